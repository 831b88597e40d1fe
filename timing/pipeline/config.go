package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archsim/rv32ooo/timing/predictor"
)

// CoreConfig is the JSON-serializable configuration surface named in the
// core's external interfaces: functional-unit counts, structural
// capacities, pipeline width, the issue/commit cap, and the branch
// predictor's mode and RAS toggle.
type CoreConfig struct {
	ALUUnits int `json:"alu_units"`
	BLUUnits int `json:"blu_units"`
	MCUUnits int `json:"mcu_units"`

	RSVCapacity int `json:"rsv_capacity"`
	ROBCapacity int `json:"rob_capacity"`

	NWay       int `json:"n_way"`
	IssueLimit int `json:"issue_limit"`

	BranchPrediction string `json:"branch_prediction"`
	ReturnStack      bool   `json:"return_stack"`

	L1Enabled bool `json:"l1_enabled"`
}

// DefaultCoreConfig returns the §6 defaults: one unit of each kind, a
// 16-entry RSV, a 32-entry ROB, scalar (1-wide) fetch/decode/commit, a
// 1-per-cycle issue/commit cap, twobit prediction, RAS off, no L1.
func DefaultCoreConfig() *CoreConfig {
	return &CoreConfig{
		ALUUnits: 1, BLUUnits: 1, MCUUnits: 1,
		RSVCapacity: 16, ROBCapacity: 32,
		NWay: 1, IssueLimit: 1,
		BranchPrediction: "twobit", ReturnStack: false,
		L1Enabled: false,
	}
}

// Validate rejects structurally nonsensical configuration, and applies
// the "issue-limit 0 means total functional units" rewrite (§9).
func (c *CoreConfig) Validate() error {
	if c.ALUUnits <= 0 || c.BLUUnits <= 0 || c.MCUUnits <= 0 {
		return fmt.Errorf("alu/blu/mcu unit counts must be > 0")
	}
	if c.RSVCapacity <= 0 || c.ROBCapacity <= 0 {
		return fmt.Errorf("rsv/rob capacity must be > 0")
	}
	if c.NWay <= 0 {
		return fmt.Errorf("n_way must be > 0")
	}
	if _, ok := predictor.ParseMode(c.BranchPrediction); !ok {
		return fmt.Errorf("unknown branch_prediction mode %q", c.BranchPrediction)
	}
	if c.IssueLimit == 0 {
		c.IssueLimit = c.ALUUnits + c.BLUUnits + c.MCUUnits
	}
	if c.IssueLimit < 0 {
		return fmt.Errorf("issue_limit must be >= 0")
	}
	return nil
}

// Clone returns an independent copy.
func (c *CoreConfig) Clone() *CoreConfig {
	clone := *c
	return &clone
}

// LoadCoreConfig reads a JSON CoreConfig from path, starting from the
// pinned defaults for any field the file omits.
func LoadCoreConfig(path string) (*CoreConfig, error) {
	cfg := DefaultCoreConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading core config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing core config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the config as indented JSON.
func (c *CoreConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling core config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
