package ooo

import (
	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/latency"
)

// Occupant is the micro-op currently bound to a functional-unit lane,
// carrying its resolved operand values and ROB destination.
type Occupant struct {
	Entry     RSEntry
	Src1, Src2 uint32

	Remaining uint64 // cycles left before the result is ready
	Done      bool   // true once Remaining has reached zero; awaits writeback drain

	Result WritebackResult
}

// Lane is a single fixed-depth shift register: one occupant at a time,
// free to accept a new one only once its output has been drained.
type Lane struct {
	occupant *Occupant
}

// Free reports whether the lane can accept a new occupant.
func (l *Lane) Free() bool { return l.occupant == nil }

// ALUArray is a parameterised array of ALU lanes.
type ALUArray struct {
	lanes []Lane
	alu   *emu.ALU
	lat   *latency.TimingConfig
}

// NewALUArray creates n ALU lanes.
func NewALUArray(n int, lat *latency.TimingConfig) *ALUArray {
	return &ALUArray{lanes: make([]Lane, n), alu: emu.NewALU(), lat: lat}
}

// Count returns the number of lanes.
func (a *ALUArray) Count() int { return len(a.lanes) }

// FreeCount returns how many lanes can currently accept an occupant.
func (a *ALUArray) FreeCount() int {
	n := 0
	for i := range a.lanes {
		if a.lanes[i].Free() {
			n++
		}
	}
	return n
}

func aluLatency(lat *latency.TimingConfig, op insts.Op) uint64 {
	switch op {
	case insts.OpSLL, insts.OpSLLI, insts.OpSRL, insts.OpSRLI, insts.OpSRA, insts.OpSRAI:
		return lat.ShiftLatency
	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU:
		return lat.MultiplyLatency
	case insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		return lat.DivideLatencyMax
	default:
		return lat.ALULatency
	}
}

// Accept binds entry to the first free lane, if any.
func (a *ALUArray) Accept(e RSEntry, src1, src2 uint32) bool {
	for i := range a.lanes {
		if a.lanes[i].Free() {
			a.lanes[i].occupant = &Occupant{
				Entry: e, Src1: src1, Src2: src2,
				Remaining: aluLatency(a.lat, e.Inst.Op),
			}
			return true
		}
	}
	return false
}

// Tick advances every occupied lane one cycle, computing results for
// lanes whose latency has elapsed.
func (a *ALUArray) Tick() {
	for i := range a.lanes {
		o := a.lanes[i].occupant
		if o == nil || o.Done {
			continue
		}
		if o.Remaining > 0 {
			o.Remaining--
		}
		if o.Remaining == 0 {
			o.Done = true
			value := a.alu.Execute(o.Entry.Inst.Op, o.Src1, o.Src2)
			if o.Entry.Inst.Op == insts.OpLUI {
				value = o.Src1
			} else if o.Entry.Inst.Op == insts.OpAUIPC {
				value = o.Entry.Inst.PC + o.Src1
			}
			o.Result = WritebackResult{Slot: o.Entry.DestSlot, Value: value}
		}
	}
}

// Drain removes and returns the completed occupants, freeing their lanes.
func (a *ALUArray) Drain() []WritebackResult {
	var out []WritebackResult
	for i := range a.lanes {
		o := a.lanes[i].occupant
		if o != nil && o.Done {
			out = append(out, o.Result)
			a.lanes[i].occupant = nil
		}
	}
	return out
}

// SquashSlots clears any occupant (executing or completed-but-undrained)
// bound for one of the discarded ROB slots.
func (a *ALUArray) SquashSlots(slots map[int]bool) {
	for i := range a.lanes {
		o := a.lanes[i].occupant
		if o != nil && slots[o.Entry.DestSlot] {
			a.lanes[i].occupant = nil
		}
	}
}

// Clone returns an independent deep copy for snapshotting.
func (a *ALUArray) Clone() *ALUArray {
	c := &ALUArray{lanes: make([]Lane, len(a.lanes)), alu: a.alu, lat: a.lat}
	for i := range a.lanes {
		if a.lanes[i].occupant != nil {
			o := *a.lanes[i].occupant
			c.lanes[i].occupant = &o
		}
	}
	return c
}

// BLUArray is a parameterised array of branch/jump resolution lanes.
// Resolution is always single-cycle.
type BLUArray struct {
	lanes []Lane
	blu   *emu.BranchUnit
}

// NewBLUArray creates n BLU lanes.
func NewBLUArray(n int) *BLUArray {
	return &BLUArray{lanes: make([]Lane, n), blu: emu.NewBranchUnit()}
}

// Count returns the number of lanes.
func (b *BLUArray) Count() int { return len(b.lanes) }

// FreeCount returns how many lanes can currently accept an occupant.
func (b *BLUArray) FreeCount() int {
	n := 0
	for i := range b.lanes {
		if b.lanes[i].Free() {
			n++
		}
	}
	return n
}

// Accept binds entry to the first free lane, if any.
func (b *BLUArray) Accept(e RSEntry, src1, src2 uint32) bool {
	for i := range b.lanes {
		if b.lanes[i].Free() {
			b.lanes[i].occupant = &Occupant{Entry: e, Src1: src1, Src2: src2, Remaining: 1}
			return true
		}
	}
	return false
}

// Tick advances every occupied lane; BLU resolution is always 1 cycle.
func (b *BLUArray) Tick() {
	for i := range b.lanes {
		o := b.lanes[i].occupant
		if o == nil || o.Done {
			continue
		}
		if o.Remaining > 0 {
			o.Remaining--
		}
		if o.Remaining == 0 {
			o.Done = true
			res := b.blu.Resolve(o.Entry.Inst, o.Src1, o.Src2)
			mispredicted := res.NextPC != o.Entry.Inst.PredictedNextPC
			value := uint32(0)
			if o.Entry.Inst.Op == insts.OpJAL || o.Entry.Inst.Op == insts.OpJALR {
				value = res.LinkPC
			}
			o.Result = WritebackResult{
				Slot: o.Entry.DestSlot, Value: value,
				IsBranch: true, BranchTaken: res.Taken, BranchTarget: res.NextPC,
				Mispredicted: mispredicted,
			}
		}
	}
}

// Drain removes and returns the completed occupants, freeing their lanes.
func (b *BLUArray) Drain() []WritebackResult {
	var out []WritebackResult
	for i := range b.lanes {
		o := b.lanes[i].occupant
		if o != nil && o.Done {
			out = append(out, o.Result)
			b.lanes[i].occupant = nil
		}
	}
	return out
}

// SquashSlots clears any occupant bound for one of the discarded slots.
func (b *BLUArray) SquashSlots(slots map[int]bool) {
	for i := range b.lanes {
		o := b.lanes[i].occupant
		if o != nil && slots[o.Entry.DestSlot] {
			b.lanes[i].occupant = nil
		}
	}
}

// Clone returns an independent deep copy for snapshotting.
func (b *BLUArray) Clone() *BLUArray {
	c := &BLUArray{lanes: make([]Lane, len(b.lanes)), blu: b.blu}
	for i := range b.lanes {
		if b.lanes[i].occupant != nil {
			o := *b.lanes[i].occupant
			c.lanes[i].occupant = &o
		}
	}
	return c
}

// MemAccessor abstracts the MCU's backing store, so it can be either the
// flat emu.Memory directly or a cache sitting in front of it.
type MemAccessor interface {
	LB(addr uint32) (uint32, error)
	LBU(addr uint32) (uint32, error)
	LH(addr uint32) (uint32, error)
	LHU(addr uint32) (uint32, error)
	LW(addr uint32) (uint32, error)
	SB(addr uint32, v uint32) error
	SH(addr uint32, v uint32) error
	SW(addr uint32, v uint32) error
	// AccessLatency returns the cycle count for an access of the given
	// width at addr; flat memory returns a fixed nominal latency, a
	// cache returns its own hit/miss latency.
	AccessLatency(addr uint32, width uint8, isWrite bool) uint64
}

// MCUArray is a parameterised array of load/store lanes.
type MCUArray struct {
	lanes []Lane
	mem   MemAccessor
	lat   *latency.TimingConfig
}

// NewMCUArray creates n MCU lanes backed by mem.
func NewMCUArray(n int, mem MemAccessor, lat *latency.TimingConfig) *MCUArray {
	return &MCUArray{lanes: make([]Lane, n), mem: mem, lat: lat}
}

// Count returns the number of lanes.
func (mc *MCUArray) Count() int { return len(mc.lanes) }

// FreeCount returns how many lanes can currently accept an occupant.
func (mc *MCUArray) FreeCount() int {
	n := 0
	for i := range mc.lanes {
		if mc.lanes[i].Free() {
			n++
		}
	}
	return n
}

// WidthForOp returns the access width in bytes of a load or store op.
func WidthForOp(op insts.Op) uint8 {
	switch op {
	case insts.OpLB, insts.OpLBU, insts.OpSB:
		return 1
	case insts.OpLH, insts.OpLHU, insts.OpSH:
		return 2
	default:
		return 4
	}
}

// effectiveAddress computes base+imm for a load or store.
func effectiveAddress(inst *insts.Instruction, base uint32) uint32 {
	return base + uint32(inst.Imm)
}

// EffectiveAddress computes base+imm for a load or store, exported for
// hazard checks that need a load's address before it reaches the MCU.
func EffectiveAddress(inst *insts.Instruction, base uint32) uint32 {
	return effectiveAddress(inst, base)
}

// Accept binds entry to the first free lane. src1 is the base register
// value; src2 is the store payload (ignored for loads).
func (mc *MCUArray) Accept(e RSEntry, src1, src2 uint32) bool {
	for i := range mc.lanes {
		if mc.lanes[i].Free() {
			addr := effectiveAddress(e.Inst, src1)
			width := WidthForOp(e.Inst.Op)
			isWrite := false
			switch e.Inst.Op {
			case insts.OpSB, insts.OpSH, insts.OpSW:
				isWrite = true
			}
			latCycles := mc.mem.AccessLatency(addr, width, isWrite)
			mc.lanes[i].occupant = &Occupant{
				Entry: e, Src1: src1, Src2: src2, Remaining: latCycles,
			}
			return true
		}
	}
	return false
}

// Tick advances every occupied lane, performing the memory access once
// its latency has elapsed.
func (mc *MCUArray) Tick() {
	for i := range mc.lanes {
		o := mc.lanes[i].occupant
		if o == nil || o.Done {
			continue
		}
		if o.Remaining > 0 {
			o.Remaining--
		}
		if o.Remaining == 0 {
			o.Done = true
			o.Result = mc.execute(o)
		}
	}
}

func (mc *MCUArray) execute(o *Occupant) WritebackResult {
	inst := o.Entry.Inst
	addr := effectiveAddress(inst, o.Src1)
	res := WritebackResult{Slot: o.Entry.DestSlot}
	switch inst.Op {
	case insts.OpLB:
		v, err := mc.mem.LB(addr)
		res.Value, res.Fault = v, err
	case insts.OpLBU:
		v, err := mc.mem.LBU(addr)
		res.Value, res.Fault = v, err
	case insts.OpLH:
		v, err := mc.mem.LH(addr)
		res.Value, res.Fault = v, err
	case insts.OpLHU:
		v, err := mc.mem.LHU(addr)
		res.Value, res.Fault = v, err
	case insts.OpLW:
		v, err := mc.mem.LW(addr)
		res.Value, res.Fault = v, err
	case insts.OpSB, insts.OpSH, insts.OpSW:
		res.IsStore = true
		res.StoreAddr = addr
		res.StoreValue = o.Src2
		res.StoreWidth = WidthForOp(inst.Op)
	}
	return res
}

// Drain removes and returns the completed occupants, freeing their lanes.
func (mc *MCUArray) Drain() []WritebackResult {
	var out []WritebackResult
	for i := range mc.lanes {
		o := mc.lanes[i].occupant
		if o != nil && o.Done {
			out = append(out, o.Result)
			mc.lanes[i].occupant = nil
		}
	}
	return out
}

// SquashSlots clears any occupant bound for one of the discarded slots.
func (mc *MCUArray) SquashSlots(slots map[int]bool) {
	for i := range mc.lanes {
		o := mc.lanes[i].occupant
		if o != nil && slots[o.Entry.DestSlot] {
			mc.lanes[i].occupant = nil
		}
	}
}

// Clone returns an independent deep copy for snapshotting. The backing
// MemAccessor is shared by reference: the pipeline snapshots the flat
// memory separately, and cache state is not part of any snapshot.
func (mc *MCUArray) Clone() *MCUArray {
	c := &MCUArray{lanes: make([]Lane, len(mc.lanes)), mem: mc.mem, lat: mc.lat}
	for i := range mc.lanes {
		if mc.lanes[i].occupant != nil {
			o := *mc.lanes[i].occupant
			c.lanes[i].occupant = &o
		}
	}
	return c
}
