package ooo

import (
	"testing"

	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/latency"
)

func TestALUArrayAcceptAndDrain(t *testing.T) {
	lat := latency.DefaultTimingConfig()
	a := NewALUArray(1, lat)
	if a.FreeCount() != 1 {
		t.Fatalf("fresh array should have 1 free lane")
	}

	e := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, DestSlot: 3}
	if !a.Accept(e, 2, 3) {
		t.Fatalf("accept into a free lane should succeed")
	}
	if a.Accept(e, 2, 3) {
		t.Fatalf("accept into a full array should fail")
	}

	a.Tick() // ALULatency is 1 cycle, so this should complete the op
	out := a.Drain()
	if len(out) != 1 {
		t.Fatalf("expected one drained result, got %d", len(out))
	}
	if out[0].Value != 5 {
		t.Fatalf("got value %d, want 5", out[0].Value)
	}
	if a.FreeCount() != 1 {
		t.Fatalf("lane should be free again after drain")
	}
}

func TestALUArraySquashSlots(t *testing.T) {
	lat := latency.DefaultTimingConfig()
	a := NewALUArray(1, lat)
	e := RSEntry{Inst: &insts.Instruction{Op: insts.OpMUL}, DestSlot: 3}
	a.Accept(e, 2, 3)

	a.SquashSlots(map[int]bool{3: true})
	if a.FreeCount() != 1 {
		t.Fatalf("squashing the occupant's slot should free its lane")
	}
}

func TestBLUArrayResolvesBranch(t *testing.T) {
	b := NewBLUArray(1)
	inst := &insts.Instruction{Op: insts.OpBEQ, PC: 0x100, Imm: 8, Target: 0x108, PredictedNextPC: 0x104}
	e := RSEntry{Inst: inst, DestSlot: 1}
	b.Accept(e, 5, 5) // equal operands, branch taken

	b.Tick()
	out := b.Drain()
	if len(out) != 1 {
		t.Fatalf("expected one drained result, got %d", len(out))
	}
	if !out[0].BranchTaken {
		t.Fatalf("beq with equal operands should resolve taken")
	}
	if !out[0].Mispredicted {
		t.Fatalf("predicted not-taken but actually taken should be a misprediction")
	}
}

func TestMCUArrayLoadAndStore(t *testing.T) {
	lat := latency.DefaultTimingConfig()
	mem := emu.NewMemory(64)
	mem.Write32(16, 0xdeadbeef)
	acc := NewFlatMemAccessor(mem, lat)
	mc := NewMCUArray(1, acc, lat)

	loadInst := &insts.Instruction{Op: insts.OpLW, Imm: 0}
	e := RSEntry{Inst: loadInst, DestSlot: 1}
	mc.Accept(e, 16, 0)
	for i := uint64(0); i < lat.LoadLatency; i++ {
		mc.Tick()
	}
	out := mc.Drain()
	if len(out) != 1 || out[0].Value != 0xdeadbeef {
		t.Fatalf("got %+v, want value 0xdeadbeef", out)
	}

	storeInst := &insts.Instruction{Op: insts.OpSW, Imm: 0}
	se := RSEntry{Inst: storeInst, DestSlot: 2}
	mc.Accept(se, 32, 0x12345678)
	for i := uint64(0); i < lat.StoreLatency; i++ {
		mc.Tick()
	}
	sout := mc.Drain()
	if len(sout) != 1 || !sout[0].IsStore || sout[0].StoreAddr != 32 || sout[0].StoreValue != 0x12345678 {
		t.Fatalf("got %+v, want a pending store to addr 32", sout)
	}
}

func TestMCUArrayClone(t *testing.T) {
	lat := latency.DefaultTimingConfig()
	mem := emu.NewMemory(64)
	acc := NewFlatMemAccessor(mem, lat)
	mc := NewMCUArray(1, acc, lat)
	e := RSEntry{Inst: &insts.Instruction{Op: insts.OpLW}, DestSlot: 1}
	mc.Accept(e, 0, 0)

	clone := mc.Clone()
	if clone.FreeCount() != 0 {
		t.Fatalf("clone should carry over the in-flight occupant")
	}
}
