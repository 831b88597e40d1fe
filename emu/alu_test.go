package emu

import (
	"testing"

	"github.com/archsim/rv32ooo/insts"
)

func TestALUBasicArithmetic(t *testing.T) {
	a := NewALU()
	if got := a.Execute(insts.OpADD, 2, 3); got != 5 {
		t.Fatalf("ADD: got %d", got)
	}
	if got := a.Execute(insts.OpSUB, 5, 3); got != 2 {
		t.Fatalf("SUB: got %d", got)
	}
}

func TestALUShifts(t *testing.T) {
	a := NewALU()
	if got := a.Execute(insts.OpSRA, 0xfffffff8, 1); int32(got) != -4 {
		t.Fatalf("SRA: got %d", int32(got))
	}
	if got := a.Execute(insts.OpSRL, 0xfffffff8, 1); got != 0x7ffffffc {
		t.Fatalf("SRL: got 0x%x", got)
	}
}

func TestALUDivideByZero(t *testing.T) {
	a := NewALU()
	if got := a.Execute(insts.OpDIV, 7, 0); got != 0xffffffff {
		t.Fatalf("DIV by zero: got 0x%x", got)
	}
	if got := a.Execute(insts.OpDIVU, 7, 0); got != 0xffffffff {
		t.Fatalf("DIVU by zero: got 0x%x", got)
	}
	if got := a.Execute(insts.OpREM, 7, 0); got != 7 {
		t.Fatalf("REM by zero: got %d", got)
	}
	if got := a.Execute(insts.OpREMU, 7, 0); got != 7 {
		t.Fatalf("REMU by zero: got %d", got)
	}
}

func TestALUDivideOverflow(t *testing.T) {
	a := NewALU()
	mostNeg := uint32(0x80000000)
	if got := a.Execute(insts.OpDIV, mostNeg, 0xffffffff); got != mostNeg {
		t.Fatalf("DIV overflow: got 0x%x", got)
	}
	if got := a.Execute(insts.OpREM, mostNeg, 0xffffffff); got != 0 {
		t.Fatalf("REM overflow: got %d", got)
	}
}

func TestALUMulhVariants(t *testing.T) {
	a := NewALU()
	// -1 * -1 = 1, high word of signed*signed is 0
	if got := a.Execute(insts.OpMULH, 0xffffffff, 0xffffffff); got != 0 {
		t.Fatalf("MULH: got 0x%x", got)
	}
	// unsigned 0xffffffff * 0xffffffff high word
	if got := a.Execute(insts.OpMULHU, 0xffffffff, 0xffffffff); got != 0xfffffffe {
		t.Fatalf("MULHU: got 0x%x", got)
	}
}

func TestALUCompare(t *testing.T) {
	a := NewALU()
	if got := a.Execute(insts.OpSLT, 0xffffffff, 1); got != 1 {
		t.Fatalf("SLT signed: got %d", got)
	}
	if got := a.Execute(insts.OpSLTU, 0xffffffff, 1); got != 0 {
		t.Fatalf("SLTU unsigned: got %d", got)
	}
}
