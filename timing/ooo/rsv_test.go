package ooo

import (
	"testing"

	"github.com/archsim/rv32ooo/insts"
)

func TestKindForOp(t *testing.T) {
	cases := []struct {
		op   insts.Op
		kind FUKind
	}{
		{insts.OpADD, FUKindALU},
		{insts.OpBEQ, FUKindBLU},
		{insts.OpJAL, FUKindBLU},
		{insts.OpLW, FUKindMCU},
		{insts.OpSB, FUKindMCU},
	}
	for _, c := range cases {
		if got := KindForOp(c.op); got != c.kind {
			t.Errorf("KindForOp(%v) = %v, want %v", c.op, got, c.kind)
		}
	}
}

func TestRSEntryReady(t *testing.T) {
	e := RSEntry{Src1: Resolved(1), HasSrc2: true, Src2: Pending(4)}
	if e.Ready() {
		t.Fatalf("entry with a pending source should not be ready")
	}
	e.Src2 = Resolved(2)
	if !e.Ready() {
		t.Fatalf("entry with both sources resolved should be ready")
	}
}

func TestRSVDispatchInAndFull(t *testing.T) {
	v := NewRSV(1)
	e := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Resolved(1)}
	if !v.DispatchIn(e) {
		t.Fatalf("dispatch into an empty RSV should succeed")
	}
	if v.DispatchIn(e) {
		t.Fatalf("dispatch into a full RSV should fail")
	}
}

func TestRSVBroadcastResolvesPendingOperand(t *testing.T) {
	v := NewRSV(4)
	e := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Pending(7), HasSrc2: true, Src2: Resolved(1)}
	v.DispatchIn(e)

	v.Broadcast(7, 42)
	picked := v.IssuePick(FUKindALU, 1, nil)
	if len(picked) != 1 {
		t.Fatalf("expected the broadcast-resolved entry to become issuable")
	}
	if picked[0].Src1.Value != 42 {
		t.Fatalf("got src1=%d, want 42", picked[0].Src1.Value)
	}
}

func TestRSVIssuePickOldestFirst(t *testing.T) {
	v := NewRSV(4)
	older := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Resolved(1), Seq: 1, DestSlot: 1}
	younger := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Resolved(2), Seq: 2, DestSlot: 2}
	v.DispatchIn(younger)
	v.DispatchIn(older)

	picked := v.IssuePick(FUKindALU, 1, nil)
	if len(picked) != 1 || picked[0].DestSlot != 1 {
		t.Fatalf("expected the older entry to issue first, got %+v", picked)
	}
	if v.Count() != 1 {
		t.Fatalf("issued entry should be removed from the station")
	}
}

func TestRSVSquashSlots(t *testing.T) {
	v := NewRSV(4)
	keep := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Resolved(1), DestSlot: 1}
	drop := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Resolved(1), DestSlot: 2}
	pendingOnDropped := RSEntry{Inst: &insts.Instruction{Op: insts.OpADD}, Src1: Pending(2), DestSlot: 3}
	v.DispatchIn(keep)
	v.DispatchIn(drop)
	v.DispatchIn(pendingOnDropped)

	v.SquashSlots(map[int]bool{2: true})
	if v.Count() != 1 {
		t.Fatalf("expected only the non-discarded entry to remain, got %d", v.Count())
	}
}
