package emu

// LoadStoreUnit implements rv32im's load and store addressing modes atop
// a flat Memory: base register plus sign-extended immediate offset.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit creates a LoadStoreUnit backed by memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// LB loads a sign-extended byte.
func (lsu *LoadStoreUnit) LB(addr uint32) (uint32, error) {
	v, err := lsu.memory.Read8(addr)
	if err != nil {
		return 0, err
	}
	return uint32(int32(int8(v))), nil
}

// LBU loads a zero-extended byte.
func (lsu *LoadStoreUnit) LBU(addr uint32) (uint32, error) {
	v, err := lsu.memory.Read8(addr)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// LH loads a sign-extended halfword.
func (lsu *LoadStoreUnit) LH(addr uint32) (uint32, error) {
	v, err := lsu.memory.Read16(addr)
	if err != nil {
		return 0, err
	}
	return uint32(int32(int16(v))), nil
}

// LHU loads a zero-extended halfword.
func (lsu *LoadStoreUnit) LHU(addr uint32) (uint32, error) {
	v, err := lsu.memory.Read16(addr)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// LW loads a word.
func (lsu *LoadStoreUnit) LW(addr uint32) (uint32, error) {
	return lsu.memory.Read32(addr)
}

// SB stores the low byte of v.
func (lsu *LoadStoreUnit) SB(addr uint32, v uint32) error {
	return lsu.memory.Write8(addr, uint8(v))
}

// SH stores the low halfword of v.
func (lsu *LoadStoreUnit) SH(addr uint32, v uint32) error {
	return lsu.memory.Write16(addr, uint16(v))
}

// SW stores a full word.
func (lsu *LoadStoreUnit) SW(addr uint32, v uint32) error {
	return lsu.memory.Write32(addr, v)
}
