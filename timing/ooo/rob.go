// Package ooo implements the out-of-order core's in-flight data
// structures: the reorder buffer, reservation station, rename map and
// functional-unit models. Cross-references between them are dense index
// handles (array slot numbers) rather than pointers, so that squash and
// snapshotting reduce to slice truncation and value copies.
package ooo

import "github.com/archsim/rv32ooo/insts"

// State is an ROB entry's lifecycle stage.
type State uint8

const (
	StateFree State = iota
	StateIssued
	StateExecuting
	StateCompleted
	StateSquashed
)

// Entry is one reorder-buffer slot.
type Entry struct {
	Valid bool
	Seq   uint64
	Inst  *insts.Instruction
	State State

	HasDest bool
	Dest    uint8
	Value   uint32

	IsStore    bool
	StoreAddr  uint32
	StoreValue uint32
	StoreWidth uint8 // 1, 2, or 4

	IsBranch     bool
	BranchTaken  bool
	BranchTarget uint32
	Mispredicted bool

	IsECALL  bool
	IsEBREAK bool

	// Fault, if non-nil, is a fatal memory/decode fault discovered while
	// executing this entry; it is only surfaced once the entry reaches
	// the ROB head at commit.
	Fault error

	Speculative    bool
	PredictorToken interface{}
}

// ROB is a fixed-capacity circular FIFO of in-flight instructions in
// program order.
type ROB struct {
	entries  []Entry
	head     int // index of oldest (next to commit)
	tail     int // index where the next allocation lands
	count    int
	capacity int
	nextSeq  uint64
}

// NewROB creates an ROB with the given capacity.
func NewROB(capacity int) *ROB {
	return &ROB{entries: make([]Entry, capacity), capacity: capacity}
}

// Capacity returns the configured size.
func (r *ROB) Capacity() int { return r.capacity }

// Count returns the number of live entries.
func (r *ROB) Count() int { return r.count }

// Full reports whether Allocate would fail.
func (r *ROB) Full() bool { return r.count == r.capacity }

// Empty reports whether the ROB holds no entries.
func (r *ROB) Empty() bool { return r.count == 0 }

// Allocate admits inst at the tail in program order, returning its slot
// index (the dense handle other structures reference) and false if the
// ROB is full.
func (r *ROB) Allocate(inst *insts.Instruction, speculative bool) (int, bool) {
	if r.Full() {
		return 0, false
	}
	slot := r.tail
	r.entries[slot] = Entry{
		Valid:       true,
		Seq:         r.nextSeq,
		Inst:        inst,
		State:       StateIssued,
		Speculative: speculative,
	}
	r.nextSeq++
	r.tail = (r.tail + 1) % r.capacity
	r.count++
	return slot, true
}

// Entry returns a pointer to the slot's entry for in-place mutation.
func (r *ROB) Entry(slot int) *Entry {
	return &r.entries[slot]
}

// HeadSlot returns the oldest live slot index and whether the ROB is
// non-empty.
func (r *ROB) HeadSlot() (int, bool) {
	if r.Empty() {
		return 0, false
	}
	return r.head, true
}

// WritebackResult carries a functional unit's completed result into the
// ROB slot that issued it.
type WritebackResult struct {
	Slot         int
	Value        uint32
	IsStore      bool
	StoreAddr    uint32
	StoreValue   uint32
	StoreWidth   uint8
	IsBranch     bool
	BranchTaken  bool
	BranchTarget uint32
	Mispredicted bool
	Fault        error
}

// Writeback marks slot completed with the given result.
func (r *ROB) Writeback(res WritebackResult) {
	e := &r.entries[res.Slot]
	e.State = StateCompleted
	e.Value = res.Value
	e.IsStore = res.IsStore
	e.StoreAddr = res.StoreAddr
	e.StoreValue = res.StoreValue
	e.StoreWidth = res.StoreWidth
	e.IsBranch = res.IsBranch
	e.BranchTaken = res.BranchTaken
	e.BranchTarget = res.BranchTarget
	e.Mispredicted = res.Mispredicted
	e.Fault = res.Fault
}

// CommitHead retires the head entry if it is completed, freeing its slot
// and advancing head. Returns the entry (by value) and true if a commit
// happened.
func (r *ROB) CommitHead() (Entry, bool) {
	if r.Empty() {
		return Entry{}, false
	}
	e := r.entries[r.head]
	if e.State != StateCompleted {
		return Entry{}, false
	}
	r.entries[r.head] = Entry{}
	r.head = (r.head + 1) % r.capacity
	r.count--
	return e, true
}

// DiscardedSlots returns the slot indices strictly younger than
// mispredictSlot (by sequence number), i.e. exactly what SquashAfter is
// about to drop. Callers use this to propagate squash to the RSV and
// functional units before the ROB itself truncates.
func (r *ROB) DiscardedSlots(mispredictSlot int) []int {
	cutoffSeq := r.entries[mispredictSlot].Seq
	var out []int
	idx := r.head
	for i := 0; i < r.count; i++ {
		if r.entries[idx].Valid && r.entries[idx].Seq > cutoffSeq {
			out = append(out, idx)
		}
		idx = (idx + 1) % r.capacity
	}
	return out
}

// SquashAfter discards every entry younger (in sequence number) than the
// entry at mispredictSlot (which itself remains, since it is the entry
// that commits the misprediction), and resets tail to immediately after
// the surviving entries.
func (r *ROB) SquashAfter(mispredictSlot int) {
	cutoffSeq := r.entries[mispredictSlot].Seq

	// Walk from head to tail in order, truncating the FIFO at the first
	// entry younger than the cutoff.
	idx := r.head
	newTail := r.tail
	newCount := r.count
	for i := 0; i < r.count; i++ {
		if r.entries[idx].Valid && r.entries[idx].Seq > cutoffSeq {
			newTail = idx
			newCount = i
			break
		}
		idx = (idx + 1) % r.capacity
	}

	// Clear every entry from the cutoff point to the old tail.
	clearIdx := newTail
	for clearIdx != r.tail {
		r.entries[clearIdx] = Entry{}
		clearIdx = (clearIdx + 1) % r.capacity
	}

	r.tail = newTail
	r.count = newCount
}

// HasPendingBranch reports whether any currently live entry is a branch
// or jump, used by dispatch to mark later micro-ops speculative (§3: "a
// speculative flag inherited from whether any older unresolved branch
// exists").
func (r *ROB) HasPendingBranch() bool {
	idx := r.head
	for i := 0; i < r.count; i++ {
		if r.entries[idx].Valid && r.entries[idx].IsBranch {
			return true
		}
		idx = (idx + 1) % r.capacity
	}
	return false
}

// OlderStoreBlocks reports whether a load at the given sequence number,
// addressing [addr, addr+width), must wait before issuing: either some
// live store strictly older than seq has not yet resolved its own
// address (still executing), or one that has resolved its address
// overlaps this range and has not yet committed. Either case means
// memory does not yet hold — and the MCU cannot yet tell whether it will
// hold — the value a strictly sequential interpreter would see here.
func (r *ROB) OlderStoreBlocks(seq uint64, addr uint32, width uint8) bool {
	idx := r.head
	for i := 0; i < r.count; i++ {
		e := &r.entries[idx]
		if !e.Valid || e.Seq >= seq {
			break
		}
		if e.IsStore {
			if e.State != StateCompleted {
				return true
			}
			if rangesOverlap(e.StoreAddr, e.StoreWidth, addr, width) {
				return true
			}
		}
		idx = (idx + 1) % r.capacity
	}
	return false
}

func rangesOverlap(addrA uint32, widthA uint8, addrB uint32, widthB uint8) bool {
	endA := addrA + uint32(widthA)
	endB := addrB + uint32(widthB)
	return addrA < endB && addrB < endA
}

// Slots returns the live slot indices from head to tail in program order,
// for squash propagation and snapshotting.
func (r *ROB) Slots() []int {
	out := make([]int, 0, r.count)
	idx := r.head
	for i := 0; i < r.count; i++ {
		out = append(out, idx)
		idx = (idx + 1) % r.capacity
	}
	return out
}

// Clone returns an independent deep copy for snapshotting.
func (r *ROB) Clone() *ROB {
	c := &ROB{
		entries:  make([]Entry, len(r.entries)),
		head:     r.head,
		tail:     r.tail,
		count:    r.count,
		capacity: r.capacity,
		nextSeq:  r.nextSeq,
	}
	copy(c.entries, r.entries)
	return c
}
