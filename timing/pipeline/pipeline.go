// Package pipeline implements the out-of-order core's cycle controller:
// the seven-stage Tick() that orchestrates fetch, decode, dispatch,
// issue, execute, writeback and commit over the shared reservation
// station, reorder buffer, rename map and functional-unit arrays, plus
// the bounded cycle-history ring a time-travel UI walks.
package pipeline

import (
	"fmt"
	"io"

	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/cache"
	"github.com/archsim/rv32ooo/timing/latency"
	"github.com/archsim/rv32ooo/timing/ooo"
	"github.com/archsim/rv32ooo/timing/predictor"
)

// fetchSlot is a raw fetched word awaiting decode, carrying the
// prediction made for it at fetch time.
type fetchSlot struct {
	word            uint32
	pc              uint32
	predictedNextPC uint32
	token           predictor.Token
	isControlFlow   bool
}

// HaltCause enumerates the fatal reasons a pipeline stops, per §7.
type HaltCause uint8

const (
	HaltNone HaltCause = iota
	HaltDecodeFault
	HaltMemoryFault
	HaltEbreak
	HaltExitECALL
)

func (h HaltCause) String() string {
	switch h {
	case HaltDecodeFault:
		return "decode fault"
	case HaltMemoryFault:
		return "memory fault"
	case HaltEbreak:
		return "ebreak"
	case HaltExitECALL:
		return "exit ecall"
	default:
		return "none"
	}
}

// Stats accumulates the cumulative counters a cycle snapshot carries,
// per §3's "cumulative statistics" requirement.
type Stats struct {
	Cycles         uint64
	Fetched        uint64
	Issued         uint64
	Committed      uint64
	BranchesPred   uint64
	Mispredictions uint64
	FetchStalls    uint64
	DispatchStalls uint64
	IssueStalls    uint64

	// SpeculativeSquashed counts squashed ROB entries that were dispatched
	// speculatively (while a branch or jump was live in the ROB, §3). The
	// mispredicting branch is live when every younger entry dispatches, so
	// every squashed entry is counted.
	SpeculativeSquashed uint64
}

// CPI returns committed cycles-per-instruction, 0 if nothing has retired.
func (s Stats) CPI() float64 {
	if s.Committed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Committed)
}

// Pipeline is the out-of-order execution engine: the fetch/decode/
// dispatch/issue/execute/writeback/commit controller over a shared
// reservation station, reorder buffer, rename map, predictor and
// functional-unit arrays.
type Pipeline struct {
	cfg    *CoreConfig
	latCfg *latency.TimingConfig

	memory  *emu.Memory
	memAcc  ooo.MemAccessor
	regs    *emu.RegFile
	decoder *insts.Decoder
	pred    *predictor.Predictor

	rob    *ooo.ROB
	rsv    *ooo.RSV
	rename *ooo.RenameMap
	alus   *ooo.ALUArray
	blus   *ooo.BLUArray
	mcus   *ooo.MCUArray

	syscall *emu.SyscallHandler

	pc          uint32
	fetchQueue  []fetchSlot
	decodeQueue []*insts.Instruction

	cycle  uint64
	stats  Stats
	halted bool
	cause  HaltCause
	faultErr error
	exitCode int32

	history *History
}

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithStdout routes ECALL character output to w instead of discarding it.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.syscall = emu.NewSyscallHandler(w) }
}

// New builds a Pipeline over memory, starting fetch at entryPC, configured
// per cfg (functional-unit counts, structural capacities, predictor mode)
// and lat (the pinned per-opcode latency table).
func New(memory *emu.Memory, entryPC uint32, cfg *CoreConfig, lat *latency.TimingConfig, opts ...Option) *Pipeline {
	mode, _ := predictor.ParseMode(cfg.BranchPrediction)
	var memAcc ooo.MemAccessor = ooo.NewFlatMemAccessor(memory, lat)
	if cfg.L1Enabled {
		memAcc = cache.New(cache.DefaultL1DConfig(), cache.NewMemoryBacking(memory), lat)
	}

	p := &Pipeline{
		cfg:     cfg,
		latCfg:  lat,
		memory:  memory,
		memAcc:  memAcc,
		regs:    emu.NewRegFile(),
		decoder: insts.NewDecoder(),
		pred:    predictor.New(mode, cfg.ReturnStack),
		rob:     ooo.NewROB(cfg.ROBCapacity),
		rsv:     ooo.NewRSV(cfg.RSVCapacity),
		rename:  ooo.NewRenameMap(),
		alus:    ooo.NewALUArray(cfg.ALUUnits, lat),
		blus:    ooo.NewBLUArray(cfg.BLUUnits),
		mcus:    ooo.NewMCUArray(cfg.MCUUnits, memAcc, lat),
		syscall: emu.NewSyscallHandler(io.Discard),
		pc:      entryPC,
		history: NewHistory(historyCapacity),
	}
	p.regs.PC = entryPC
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetMemAccessor swaps in a different backing accessor for the MCU (for
// instance, a cache in front of flat memory). Must be called before the
// first Tick.
func (p *Pipeline) SetMemAccessor(acc ooo.MemAccessor) {
	p.memAcc = acc
	p.mcus = ooo.NewMCUArray(p.cfg.MCUUnits, acc, p.latCfg)
}

// PC returns the predicted fetch PC.
func (p *Pipeline) PC() uint32 { return p.pc }

// Halted reports whether the pipeline has stopped.
func (p *Pipeline) Halted() bool { return p.halted }

// HaltCauseValue returns why the pipeline stopped (HaltNone while running).
func (p *Pipeline) HaltCauseValue() HaltCause { return p.cause }

// FaultError returns the typed fault that stopped the pipeline, if any.
func (p *Pipeline) FaultError() error { return p.faultErr }

// ExitCode returns the a0 value of an exit ECALL, if that is why the
// pipeline halted.
func (p *Pipeline) ExitCode() int32 { return p.exitCode }

// Stats returns the cumulative statistics.
func (p *Pipeline) Stats() Stats { return p.stats }

// RegFile exposes the architectural register file for inspection.
func (p *Pipeline) RegFile() *emu.RegFile { return p.regs }

// Memory exposes the flat memory image for inspection.
func (p *Pipeline) Memory() *emu.Memory { return p.memory }

// History exposes the bounded cycle-history ring.
func (p *Pipeline) History() *History { return p.history }

// Tick advances the pipeline exactly one cycle, running the seven stages
// in the fixed order commit, writeback, execute, issue, dispatch, decode,
// fetch (§4.6), then appends the resulting state to the cycle history.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}
	p.cycle++

	p.doCommit()
	if !p.halted {
		p.doWriteback()
		p.doExecute()
		p.doIssue()
		p.doDispatch()
		p.doDecode()
		p.doFetch()
	}

	p.stats.Cycles = p.cycle
	p.history.Push(p.snapshot())
}

// Run ticks until the pipeline halts.
func (p *Pipeline) Run() {
	for !p.halted {
		p.Tick()
	}
}

// RunCycles ticks up to n times, stopping early if the pipeline halts.
// Returns true if still running.
func (p *Pipeline) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

func (p *Pipeline) haltWith(cause HaltCause, err error) {
	p.halted = true
	p.cause = cause
	p.faultErr = err
}

// decodeFaultError wraps a decode fault (which carries the PC and raw
// word) as a fatal pipeline diagnostic, matching the teacher's fmt.Errorf
// wrapping style for fault reporting.
func decodeFaultError(err error) error {
	return fmt.Errorf("pipeline halted: %w", err)
}
