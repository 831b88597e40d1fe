package ooo

import "github.com/archsim/rv32ooo/insts"

// FUKind identifies which functional-unit array a reservation-station
// entry needs at issue.
type FUKind uint8

const (
	FUKindALU FUKind = iota
	FUKindBLU
	FUKindMCU
)

// KindForOp classifies a decoded op by the functional unit it needs.
func KindForOp(op insts.Op) FUKind {
	switch op {
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU,
		insts.OpJAL, insts.OpJALR:
		return FUKindBLU
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU,
		insts.OpSB, insts.OpSH, insts.OpSW:
		return FUKindMCU
	default:
		return FUKindALU
	}
}

// Operand names a reservation-station source operand: either already
// resolved to a value, or waiting on a ROB slot's result.
type Operand struct {
	Ready   bool
	Value   uint32
	PendingSlot int
}

// Resolved returns an already-satisfied Operand.
func Resolved(v uint32) Operand { return Operand{Ready: true, Value: v} }

// Pending returns an Operand waiting on slot.
func Pending(slot int) Operand { return Operand{Ready: false, PendingSlot: slot} }

// RSEntry is one reservation-station slot.
type RSEntry struct {
	Valid bool
	Inst  *insts.Instruction
	Kind  FUKind

	Src1, Src2 Operand
	HasSrc2    bool // false for ops with only one source (e.g. LUI, AUIPC, JAL)

	DestSlot int // ROB slot this entry's result is bound for
	Seq      uint64
}

// Ready reports whether every source operand this entry needs is resolved.
func (e *RSEntry) Ready() bool {
	if !e.Src1.Ready {
		return false
	}
	if e.HasSrc2 && !e.Src2.Ready {
		return false
	}
	return true
}

// RSV is the reservation station: a pool of waiting micro-ops whose
// operands may still be unresolved tags naming a producing ROB slot.
type RSV struct {
	entries  []RSEntry
	capacity int
}

// NewRSV creates an RSV with the given capacity.
func NewRSV(capacity int) *RSV {
	return &RSV{entries: make([]RSEntry, 0, capacity), capacity: capacity}
}

// Capacity returns the configured size.
func (v *RSV) Capacity() int { return v.capacity }

// Count returns the number of live entries.
func (v *RSV) Count() int { return len(v.entries) }

// Full reports whether DispatchIn would fail.
func (v *RSV) Full() bool { return len(v.entries) >= v.capacity }

// DispatchIn admits a renamed micro-op. Fails (dispatch stall) if full.
func (v *RSV) DispatchIn(e RSEntry) bool {
	if v.Full() {
		return false
	}
	e.Valid = true
	v.entries = append(v.entries, e)
	return true
}

// Broadcast resolves any pending source naming slot with value, following
// the ROB writeback that produced it.
func (v *RSV) Broadcast(slot int, value uint32) {
	for i := range v.entries {
		e := &v.entries[i]
		if !e.Valid {
			continue
		}
		if !e.Src1.Ready && e.Src1.PendingSlot == slot {
			e.Src1 = Resolved(value)
		}
		if e.HasSrc2 && !e.Src2.Ready && e.Src2.PendingSlot == slot {
			e.Src2 = Resolved(value)
		}
	}
}

// IssuePick selects up to freeUnits ready entries of the given kind,
// oldest sequence number first, removes them from the station and
// returns them bound for execution. skip, if non-nil, is consulted for
// every otherwise-ready candidate; an entry it reports true for is left
// in the station for another cycle, same as an unresolved operand would
// be (used to stall a load behind an older, not-yet-safe store).
func (v *RSV) IssuePick(kind FUKind, freeUnits int, skip func(RSEntry) bool) []RSEntry {
	if freeUnits <= 0 {
		return nil
	}
	var candidates []int
	for i, e := range v.entries {
		if e.Valid && e.Kind == kind && e.Ready() && (skip == nil || !skip(e)) {
			candidates = append(candidates, i)
		}
	}
	// Oldest-sequence-first: insertion order into entries already tracks
	// dispatch order within a kind closely enough, but sort explicitly
	// since squash can leave gaps and dispatch can interleave kinds.
	for i := 1; i < len(candidates); i++ {
		j := i
		for j > 0 && v.entries[candidates[j-1]].Seq > v.entries[candidates[j]].Seq {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
			j--
		}
	}
	if len(candidates) > freeUnits {
		candidates = candidates[:freeUnits]
	}

	picked := make([]RSEntry, 0, len(candidates))
	// Remove highest index first so earlier indices stay valid.
	removeIdx := append([]int(nil), candidates...)
	for i := 1; i < len(removeIdx); i++ {
		j := i
		for j > 0 && removeIdx[j-1] < removeIdx[j] {
			removeIdx[j-1], removeIdx[j] = removeIdx[j], removeIdx[j-1]
			j--
		}
	}
	for _, idx := range candidates {
		picked = append(picked, v.entries[idx])
	}
	for _, idx := range removeIdx {
		v.entries = append(v.entries[:idx], v.entries[idx+1:]...)
	}
	return picked
}

// SquashSlots removes every entry whose destination or whose pending
// source names one of the given (now-discarded) ROB slots.
func (v *RSV) SquashSlots(slots map[int]bool) {
	kept := v.entries[:0]
	for _, e := range v.entries {
		if slots[e.DestSlot] {
			continue
		}
		if !e.Src1.Ready && slots[e.Src1.PendingSlot] {
			continue
		}
		if e.HasSrc2 && !e.Src2.Ready && slots[e.Src2.PendingSlot] {
			continue
		}
		kept = append(kept, e)
	}
	v.entries = kept
}

// Clone returns an independent deep copy for snapshotting.
func (v *RSV) Clone() *RSV {
	c := &RSV{entries: make([]RSEntry, len(v.entries)), capacity: v.capacity}
	copy(c.entries, v.entries)
	return c
}
