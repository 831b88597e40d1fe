// Package core wraps the out-of-order pipeline in the high-level
// interface the rest of the simulator drives: construction from a
// loaded program, cycle stepping, and history navigation for the
// time-travel debugger named in §4.7 and §6.
package core

import (
	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/loader"
	"github.com/archsim/rv32ooo/timing/latency"
	"github.com/archsim/rv32ooo/timing/pipeline"
)

// Core is a cycle-accurate out-of-order CPU core: a thin wrapper around
// the pipeline that owns the backing memory image and exposes
// step-forward/step-backward over its bounded cycle history.
type Core struct {
	pipeline *pipeline.Pipeline
	memory   *emu.Memory

	cursor uint64 // cycle number the caller is currently inspecting
}

// NewCore builds a Core from an already-loaded program image, configured
// per cfg and lat.
func NewCore(prog *loader.Program, cfg *pipeline.CoreConfig, lat *latency.TimingConfig, opts ...pipeline.Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := lat.Validate(); err != nil {
		return nil, err
	}

	size := prog.InitialSP
	for _, seg := range prog.Segments {
		end := seg.VirtAddr + seg.MemSize
		if end > size {
			size = end
		}
	}
	memory := emu.NewMemory(size)
	for _, seg := range prog.Segments {
		if err := memory.LoadSegment(seg.VirtAddr, seg.Data); err != nil {
			return nil, err
		}
	}

	p := pipeline.New(memory, prog.EntryPoint, cfg, lat, opts...)
	p.RegFile().WriteReg(2, prog.InitialSP) // x2 is the stack pointer

	return &Core{pipeline: p, memory: memory}, nil
}

// Tick advances the core exactly one cycle.
func (c *Core) Tick() {
	c.pipeline.Tick()
	c.cursor = c.pipeline.Stats().Cycles
}

// Run ticks until the core halts.
func (c *Core) Run() {
	for !c.pipeline.Halted() {
		c.Tick()
	}
}

// RunCycles ticks up to n times, stopping early on halt. Returns true if
// still running.
func (c *Core) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !c.pipeline.Halted(); i++ {
		c.Tick()
	}
	return !c.pipeline.Halted()
}

// Halted reports whether the core has stopped.
func (c *Core) Halted() bool { return c.pipeline.Halted() }

// HaltCause reports why the core stopped.
func (c *Core) HaltCause() pipeline.HaltCause { return c.pipeline.HaltCauseValue() }

// FaultError returns the fault that stopped the core, if any.
func (c *Core) FaultError() error { return c.pipeline.FaultError() }

// ExitCode returns the a0 value of an exit ECALL, if that is why the core
// halted.
func (c *Core) ExitCode() int32 { return c.pipeline.ExitCode() }

// Stats returns the pipeline's cumulative statistics.
func (c *Core) Stats() pipeline.Stats { return c.pipeline.Stats() }

// RegFile exposes the live architectural register file.
func (c *Core) RegFile() *emu.RegFile { return c.pipeline.RegFile() }

// Memory exposes the live flat memory image.
func (c *Core) Memory() *emu.Memory { return c.pipeline.Memory() }

// Pipeline exposes the underlying pipeline for callers needing the full
// micro-architectural surface (reservation station, ROB, predictor).
func (c *Core) Pipeline() *pipeline.Pipeline { return c.pipeline }

// Cursor returns the cycle number currently being inspected, which
// trails Stats().Cycles after a StepBack.
func (c *Core) Cursor() uint64 { return c.cursor }

// StepBack moves the inspection cursor to the previous retained cycle
// and returns its snapshot. It does not affect live simulation state;
// call Tick/Run to resume forward execution, which always continues
// from the live pipeline, not from the cursor.
func (c *Core) StepBack() (pipeline.Snapshot, error) {
	if c.cursor > c.pipeline.History().OldestCycle() {
		c.cursor--
	}
	return c.pipeline.History().At(c.cursor)
}

// StepForward moves the inspection cursor toward the live cycle and
// returns its snapshot, never advancing past the latest retained cycle.
func (c *Core) StepForward() (pipeline.Snapshot, error) {
	if latest, ok := c.pipeline.History().Latest(); ok && c.cursor < latest.Cycle {
		c.cursor++
	}
	return c.pipeline.History().At(c.cursor)
}

// SnapshotAt returns the retained snapshot for an arbitrary cycle number,
// moving the cursor there.
func (c *Core) SnapshotAt(cycle uint64) (pipeline.Snapshot, error) {
	snap, err := c.pipeline.History().At(cycle)
	if err != nil {
		return snap, err
	}
	c.cursor = cycle
	return snap, nil
}
