// Package cache provides an optional L1 data cache sitting in front of
// the flat memory image, built on Akita's directory/victim-finder cache
// components exactly as the teacher's own timing/cache package is.
package cache

import "github.com/archsim/rv32ooo/emu"

// MemoryBacking wraps emu.Memory as the cache's BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches size bytes from the backing memory starting at addr.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := m.memory.Read8(addr + uint32(i))
		if err != nil {
			continue
		}
		data[i] = b
	}
	return data
}

// Write stores data to the backing memory starting at addr.
func (m *MemoryBacking) Write(addr uint32, data []byte) {
	for i, b := range data {
		_ = m.memory.Write8(addr+uint32(i), b)
	}
}
