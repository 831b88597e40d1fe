package ooo

import (
	"testing"

	"github.com/archsim/rv32ooo/insts"
)

func TestROBAllocateAndCommit(t *testing.T) {
	r := NewROB(2)
	inst := &insts.Instruction{Op: insts.OpADD}

	slot, ok := r.Allocate(inst, false)
	if !ok {
		t.Fatalf("allocate on empty ROB should succeed")
	}
	if _, committed := r.CommitHead(); committed {
		t.Fatalf("commit before writeback should not happen")
	}

	r.Writeback(WritebackResult{Slot: slot, Value: 7})
	e, committed := r.CommitHead()
	if !committed {
		t.Fatalf("commit after writeback should happen")
	}
	if e.Value != 7 {
		t.Fatalf("got value %d, want 7", e.Value)
	}
	if !r.Empty() {
		t.Fatalf("ROB should be empty after its only entry commits")
	}
}

func TestROBFull(t *testing.T) {
	r := NewROB(1)
	inst := &insts.Instruction{Op: insts.OpADD}
	if _, ok := r.Allocate(inst, false); !ok {
		t.Fatalf("first allocate should succeed")
	}
	if _, ok := r.Allocate(inst, false); ok {
		t.Fatalf("allocate into a full ROB should fail")
	}
}

func TestROBSquashAfter(t *testing.T) {
	r := NewROB(4)
	inst := &insts.Instruction{Op: insts.OpADD}
	s0, _ := r.Allocate(inst, false)
	s1, _ := r.Allocate(inst, false)
	s2, _ := r.Allocate(inst, false)

	discarded := r.DiscardedSlots(s0)
	if len(discarded) != 2 {
		t.Fatalf("expected 2 discarded slots, got %d", len(discarded))
	}

	r.SquashAfter(s0)
	if r.Count() != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", r.Count())
	}
	if head, _ := r.HeadSlot(); head != s0 {
		t.Fatalf("head should still be the surviving entry")
	}

	// the discarded slots must be freed for reallocation.
	if _, ok := r.Allocate(inst, false); !ok {
		t.Fatalf("squash should have freed capacity")
	}
	if _, ok := r.Allocate(inst, false); !ok {
		t.Fatalf("squash should have freed two slots")
	}
	_ = s1
	_ = s2
}

func TestROBHasPendingBranch(t *testing.T) {
	r := NewROB(4)
	inst := &insts.Instruction{Op: insts.OpADD}
	if r.HasPendingBranch() {
		t.Fatalf("empty ROB has no pending branch")
	}
	slot, _ := r.Allocate(inst, false)
	r.Entry(slot).IsBranch = true
	if !r.HasPendingBranch() {
		t.Fatalf("expected a pending branch")
	}
}

func TestROBOlderStoreBlocksOnUnresolvedAddress(t *testing.T) {
	r := NewROB(4)
	store := &insts.Instruction{Op: insts.OpSW}
	load := &insts.Instruction{Op: insts.OpLW}

	storeSlot, _ := r.Allocate(store, false)
	r.Entry(storeSlot).IsStore = true
	loadSlot, _ := r.Allocate(load, false)

	loadSeq := r.Entry(loadSlot).Seq
	if !r.OlderStoreBlocks(loadSeq, 100, 4) {
		t.Fatalf("a load behind a store with no resolved address yet should block")
	}
}

func TestROBOlderStoreBlocksOnOverlapUntilCommit(t *testing.T) {
	r := NewROB(4)
	store := &insts.Instruction{Op: insts.OpSW}
	load := &insts.Instruction{Op: insts.OpLW}

	storeSlot, _ := r.Allocate(store, false)
	r.Entry(storeSlot).IsStore = true
	loadSlot, _ := r.Allocate(load, false)
	loadSeq := r.Entry(loadSlot).Seq

	r.Writeback(WritebackResult{Slot: storeSlot, IsStore: true, StoreAddr: 100, StoreWidth: 4})

	if !r.OlderStoreBlocks(loadSeq, 100, 4) {
		t.Fatalf("an overlapping, uncommitted store should still block")
	}
	if r.OlderStoreBlocks(loadSeq, 200, 4) {
		t.Fatalf("a non-overlapping resolved store should not block")
	}

	r.CommitHead() // retires the store
	if r.OlderStoreBlocks(loadSeq, 100, 4) {
		t.Fatalf("a committed store should no longer block")
	}
}

func TestROBClone(t *testing.T) {
	r := NewROB(4)
	inst := &insts.Instruction{Op: insts.OpADD}
	slot, _ := r.Allocate(inst, false)
	r.Writeback(WritebackResult{Slot: slot, Value: 42})

	c := r.Clone()
	c.Writeback(WritebackResult{Slot: slot, Value: 99})

	if r.Entry(slot).Value != 42 {
		t.Fatalf("mutating the clone should not affect the original")
	}
	if c.Entry(slot).Value != 99 {
		t.Fatalf("clone write did not take")
	}
}
