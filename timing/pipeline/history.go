package pipeline

import (
	"fmt"

	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/ooo"
	"github.com/archsim/rv32ooo/timing/predictor"
)

// historyCapacity is the bounded ring's fixed size (§4.7).
const historyCapacity = 250

// Snapshot is an immutable copy of the entire micro-architectural state
// after a cycle completes, tagged with the cycle number and the
// cumulative statistics at that point.
type Snapshot struct {
	Cycle  uint64
	Stats  Stats
	Halted bool
	Cause  HaltCause
	PC     uint32

	Regs   *emu.RegFile
	Memory *emu.Memory
	ROB    *ooo.ROB
	RSV    *ooo.RSV
	Rename *ooo.RenameMap
	ALUs   *ooo.ALUArray
	BLUs   *ooo.BLUArray
	MCUs   *ooo.MCUArray
	Pred   *predictor.Predictor

	FetchQueue  []fetchSlot
	DecodeQueue []*insts.Instruction
}

func (p *Pipeline) snapshot() Snapshot {
	fq := append([]fetchSlot(nil), p.fetchQueue...)
	dq := append([]*insts.Instruction(nil), p.decodeQueue...)
	return Snapshot{
		Cycle: p.cycle, Stats: p.stats, Halted: p.halted, Cause: p.cause, PC: p.pc,
		Regs: p.regs.Clone(), Memory: p.memory.Clone(),
		ROB: p.rob.Clone(), RSV: p.rsv.Clone(), Rename: p.rename.Clone(),
		ALUs: p.alus.Clone(), BLUs: p.blus.Clone(), MCUs: p.mcus.Clone(),
		Pred: p.pred.Clone(),
		FetchQueue: fq, DecodeQueue: dq,
	}
}

// History is a ring buffer of at most historyCapacity complete cycle
// snapshots; the oldest is evicted once the buffer is full. Step-forward
// resumes simulation only from the latest snapshot; step-backward
// reconstitutes any snapshot still within the window.
type History struct {
	capacity int
	entries  []Snapshot
	// base is the cycle number of entries[0]; entries are contiguous by
	// cycle number from there.
	base uint64
}

// NewHistory creates a ring of the given capacity.
func NewHistory(capacity int) *History {
	return &History{capacity: capacity, entries: make([]Snapshot, 0, capacity)}
}

// Push appends a new snapshot, evicting the oldest once the ring is full.
func (h *History) Push(s Snapshot) {
	if len(h.entries) == 0 {
		h.base = s.Cycle
	} else if len(h.entries) >= h.capacity {
		h.entries = h.entries[1:]
		h.base++
	}
	h.entries = append(h.entries, s)
}

// Len returns how many snapshots are currently retained.
func (h *History) Len() int { return len(h.entries) }

// Latest returns the newest snapshot and true, or false if history is
// empty.
func (h *History) Latest() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// ErrHistoryUnderflow is returned by At when cycle lies outside the
// retained window (§7's "history underflow").
var ErrHistoryUnderflow = fmt.Errorf("requested cycle is outside the retained history window")

// At returns the snapshot for the given absolute cycle number, or
// ErrHistoryUnderflow if it has fallen out of the window.
func (h *History) At(cycle uint64) (Snapshot, error) {
	if len(h.entries) == 0 || cycle < h.base || cycle >= h.base+uint64(len(h.entries)) {
		return Snapshot{}, ErrHistoryUnderflow
	}
	return h.entries[cycle-h.base], nil
}

// OldestCycle returns the cycle number of the oldest retained snapshot.
func (h *History) OldestCycle() uint64 { return h.base }
