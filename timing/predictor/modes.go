package predictor

// offMode always predicts not-taken (sequential next PC); it never
// trains, since there is no table.
type offMode struct{}

func (offMode) predict(pc uint32, ghr uint32) bool       { return false }
func (offMode) update(pc uint32, ghr uint32, taken bool)  {}
func (offMode) clone() mode                              { return offMode{} }

// oneBitMode is a PC-indexed table of single taken/not-taken bits.
type oneBitMode struct {
	table []bool
}

func newOneBitMode() *oneBitMode {
	return &oneBitMode{table: make([]bool, 1<<tableBits)}
}

func pcIndex(pc uint32) uint32 {
	return (pc >> 2) & ((1 << tableBits) - 1)
}

func (m *oneBitMode) predict(pc uint32, ghr uint32) bool {
	return m.table[pcIndex(pc)]
}

func (m *oneBitMode) update(pc uint32, ghr uint32, taken bool) {
	m.table[pcIndex(pc)] = taken
}

func (m *oneBitMode) clone() mode {
	c := &oneBitMode{table: make([]bool, len(m.table))}
	copy(c.table, m.table)
	return c
}

// twoBitMode is a PC-indexed table of 2-bit saturating counters; a branch
// is predicted taken when its counter is in the top half of the range.
type twoBitMode struct {
	counters []uint8
}

func newTwoBitMode() *twoBitMode {
	c := make([]uint8, 1<<tableBits)
	for i := range c {
		c[i] = 1 // weakly not-taken
	}
	return &twoBitMode{counters: c}
}

func (m *twoBitMode) predict(pc uint32, ghr uint32) bool {
	return m.counters[pcIndex(pc)] >= 2
}

func (m *twoBitMode) update(pc uint32, ghr uint32, taken bool) {
	idx := pcIndex(pc)
	if taken {
		if m.counters[idx] < 3 {
			m.counters[idx]++
		}
	} else {
		if m.counters[idx] > 0 {
			m.counters[idx]--
		}
	}
}

func (m *twoBitMode) clone() mode {
	c := &twoBitMode{counters: make([]uint8, len(m.counters))}
	copy(c.counters, m.counters)
	return c
}

// twoLevelMode is a gshare-style predictor: the h-bit global history
// register is XORed with the low h bits of the PC to index a table of
// 2-bit saturating counters. h is pinned to twoLevelHistoryBits (see
// DESIGN.md's resolution of the two-level indexing open question).
type twoLevelMode struct {
	counters []uint8
	mask     uint32
}

func newTwoLevelMode() *twoLevelMode {
	size := uint32(1) << twoLevelHistoryBits
	c := make([]uint8, size)
	for i := range c {
		c[i] = 1
	}
	return &twoLevelMode{counters: c, mask: size - 1}
}

func (m *twoLevelMode) index(pc uint32, ghr uint32) uint32 {
	return (pcIndex(pc) ^ ghr) & m.mask
}

func (m *twoLevelMode) predict(pc uint32, ghr uint32) bool {
	return m.counters[m.index(pc, ghr)] >= 2
}

func (m *twoLevelMode) update(pc uint32, ghr uint32, taken bool) {
	idx := m.index(pc, ghr)
	if taken {
		if m.counters[idx] < 3 {
			m.counters[idx]++
		}
	} else {
		if m.counters[idx] > 0 {
			m.counters[idx]--
		}
	}
}

func (m *twoLevelMode) clone() mode {
	c := &twoLevelMode{counters: make([]uint8, len(m.counters)), mask: m.mask}
	copy(c.counters, m.counters)
	return c
}
