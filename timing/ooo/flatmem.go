package ooo

import (
	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/timing/latency"
)

// FlatMemAccessor adapts emu.LoadStoreUnit (backed directly by emu.Memory,
// no cache) to the MCUArray's MemAccessor contract, charging the nominal
// per-width latency from the pinned timing table.
type FlatMemAccessor struct {
	lsu *emu.LoadStoreUnit
	lat *latency.TimingConfig
}

// NewFlatMemAccessor creates an accessor reading/writing memory directly.
func NewFlatMemAccessor(memory *emu.Memory, lat *latency.TimingConfig) *FlatMemAccessor {
	return &FlatMemAccessor{lsu: emu.NewLoadStoreUnit(memory), lat: lat}
}

func (f *FlatMemAccessor) LB(addr uint32) (uint32, error)  { return f.lsu.LB(addr) }
func (f *FlatMemAccessor) LBU(addr uint32) (uint32, error) { return f.lsu.LBU(addr) }
func (f *FlatMemAccessor) LH(addr uint32) (uint32, error)  { return f.lsu.LH(addr) }
func (f *FlatMemAccessor) LHU(addr uint32) (uint32, error) { return f.lsu.LHU(addr) }
func (f *FlatMemAccessor) LW(addr uint32) (uint32, error)  { return f.lsu.LW(addr) }
func (f *FlatMemAccessor) SB(addr uint32, v uint32) error  { return f.lsu.SB(addr, v) }
func (f *FlatMemAccessor) SH(addr uint32, v uint32) error  { return f.lsu.SH(addr, v) }
func (f *FlatMemAccessor) SW(addr uint32, v uint32) error  { return f.lsu.SW(addr, v) }

// AccessLatency returns the pinned nominal load or store latency
// regardless of address or width; there is no cache hierarchy on this
// path.
func (f *FlatMemAccessor) AccessLatency(addr uint32, width uint8, isWrite bool) uint64 {
	if isWrite {
		return f.lat.StoreLatency
	}
	return f.lat.LoadLatency
}
