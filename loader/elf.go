// Package loader parses a statically linked rv32im ELF executable into
// the entry point and loadable segments the simulator's memory image is
// built from. This is the sole "executable input" collaborator named in
// the core's external interfaces; everything else about the container
// format stays out of the core.
package loader

import (
	"debug/elf"
	"fmt"
)

// SegmentFlags records the ELF program header's read/write/execute bits.
type SegmentFlags uint32

const (
	SegmentFlagExecute SegmentFlags = 1 << iota
	SegmentFlagWrite
	SegmentFlagRead
)

// DefaultStackTop is where the initial stack pointer is placed absent any
// other information (rv32 user address space is 4 GiB; this sits well
// below the top to leave room for a guard region).
const DefaultStackTop = 0xfffff000

// DefaultStackSize is the span reserved below DefaultStackTop.
const DefaultStackSize = 1 * 1024 * 1024

// Segment is one PT_LOAD program header's loadable contents.
type Segment struct {
	VirtAddr uint32
	Data     []byte
	MemSize  uint32
	Flags    SegmentFlags
}

// Program is the fully parsed load image: where to start, and what bytes
// go where.
type Program struct {
	EntryPoint uint32
	Segments   []Segment
	InitialSP  uint32
}

// Load parses path as a 32-bit little-endian RISC-V ELF executable and
// returns its loadable segments and entry point.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening elf: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("unsupported ELF class %v, want ELFCLASS32", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("unsupported ELF machine %v, want EM_RISCV", f.Machine)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if _, err := phdr.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("reading segment at 0x%x: %w", phdr.Vaddr, err)
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}
