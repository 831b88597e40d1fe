package emu

import (
	"bytes"
	"testing"
)

func asmADDI(rd, rs1 uint8, imm int32) uint32 {
	return uint32(imm)<<20 | uint32(rs1)<<15 | 0<<12 | uint32(rd)<<7 | 0x13
}

func asmADD(rd, rs1, rs2 uint8) uint32 {
	return 0<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | 0<<12 | uint32(rd)<<7 | 0x33
}

func asmECALL() uint32 {
	return 0x00000073
}

func writeProgram(m *Memory, base uint32, words []uint32) {
	for idx, w := range words {
		_ = m.Write32(base+uint32(idx*4), w)
	}
}

func TestInterpreterAddsAndExits(t *testing.T) {
	m := NewMemory(256)
	// x1 = 5, x2 = 7, x3 = x1+x2, a0(x10) = x3, a7(x17) = 93 (exit), ECALL
	writeProgram(m, 0, []uint32{
		asmADDI(1, 0, 5),
		asmADDI(2, 0, 7),
		asmADD(3, 1, 2),
		asmADDI(10, 3, 0), // mv a0, x3
		asmADDI(17, 0, 93),
		asmECALL(),
	})

	interp := NewInterpreter(m)
	interp.SetPC(0)
	result := interp.Run()
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.Exited || result.ExitCode != 12 {
		t.Fatalf("expected clean exit with code 12, got %+v", result)
	}
}

func TestInterpreterPutChar(t *testing.T) {
	m := NewMemory(256)
	var buf bytes.Buffer
	writeProgram(m, 0, []uint32{
		asmADDI(11, 0, 'A'), // a1 = 'A'
		asmADDI(17, 0, 1),   // a7 = putchar
		asmECALL(),
		asmADDI(17, 0, 93), // a7 = exit
		asmECALL(),
	})
	interp := NewInterpreter(m, WithStdout(&buf))
	interp.SetPC(0)
	result := interp.Run()
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if buf.String() != "A" {
		t.Fatalf("expected %q, got %q", "A", buf.String())
	}
}

func TestInterpreterEbreakIsFatal(t *testing.T) {
	m := NewMemory(16)
	writeProgram(m, 0, []uint32{0x00100073})
	interp := NewInterpreter(m)
	result := interp.Run()
	if result.Err == nil {
		t.Fatal("expected EBREAK to be fatal")
	}
}
