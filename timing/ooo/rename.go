package ooo

// RenameMap maps each architectural register to either "architectural
// value" (no live producer) or "produced by ROB slot k". At most one live
// ROB slot owns a given architectural destination at a time; a later
// dispatch superseding an earlier one simply overwrites the entry.
type RenameMap struct {
	owner [32]int  // ROB slot owning the register, if live
	live  [32]bool
}

// NewRenameMap creates a map with every register resolved to its
// architectural value (no in-flight producer).
func NewRenameMap() *RenameMap {
	return &RenameMap{}
}

// Lookup returns the producing ROB slot and true if reg has a live
// in-flight producer, or false if reg should be read from the
// architectural register file.
func (m *RenameMap) Lookup(reg uint8) (int, bool) {
	if reg == 0 {
		return 0, false
	}
	if m.live[reg] {
		return m.owner[reg], true
	}
	return 0, false
}

// SetProducer records that slot will produce reg's next value, superseding
// any earlier producer.
func (m *RenameMap) SetProducer(reg uint8, slot int) {
	if reg == 0 {
		return
	}
	m.owner[reg] = slot
	m.live[reg] = true
}

// ClearIfOwner drops the mapping for reg if and only if slot is still its
// recorded producer (an older slot's commit must not clobber a newer
// producer's claim).
func (m *RenameMap) ClearIfOwner(reg uint8, slot int) {
	if reg == 0 {
		return
	}
	if m.live[reg] && m.owner[reg] == slot {
		m.live[reg] = false
	}
}

// RebuildAfterSquash drops every mapping whose producer is not in the set
// of surviving ROB slots, so stale tags left by discarded instructions do
// not linger.
func (m *RenameMap) RebuildAfterSquash(surviving map[int]bool) {
	for reg := 1; reg < 32; reg++ {
		if m.live[reg] && !surviving[m.owner[reg]] {
			m.live[reg] = false
		}
	}
}

// Clone returns an independent copy for snapshotting.
func (m *RenameMap) Clone() *RenameMap {
	c := *m
	return &c
}
