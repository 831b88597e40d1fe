package emu

import "github.com/archsim/rv32ooo/insts"

// ALU performs the arithmetic/logical/shift/compare/multiply/divide core
// of rv32im. It is stateless: every method is a pure function of its
// operands.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute computes the result of an ALU-class operation given its two
// 32-bit operands (already resolved from registers or immediates by the
// caller). It handles the arithmetic/logical/shift/compare/multiply/divide
// kinds; any other op, including LUI, AUIPC, branches and loads/stores,
// yields 0.
func (a *ALU) Execute(op insts.Op, rs1, rs2 uint32) uint32 {
	switch op {
	case insts.OpADD, insts.OpADDI:
		return rs1 + rs2
	case insts.OpSUB:
		return rs1 - rs2
	case insts.OpAND, insts.OpANDI:
		return rs1 & rs2
	case insts.OpOR, insts.OpORI:
		return rs1 | rs2
	case insts.OpXOR, insts.OpXORI:
		return rs1 ^ rs2
	case insts.OpSLL, insts.OpSLLI:
		return rs1 << (rs2 & 0x1f)
	case insts.OpSRL, insts.OpSRLI:
		return rs1 >> (rs2 & 0x1f)
	case insts.OpSRA, insts.OpSRAI:
		return uint32(int32(rs1) >> (rs2 & 0x1f))
	case insts.OpSLT, insts.OpSLTI:
		if int32(rs1) < int32(rs2) {
			return 1
		}
		return 0
	case insts.OpSLTU, insts.OpSLTIU:
		if rs1 < rs2 {
			return 1
		}
		return 0
	case insts.OpMUL:
		return rs1 * rs2
	case insts.OpMULH:
		return uint32((int64(int32(rs1)) * int64(int32(rs2))) >> 32)
	case insts.OpMULHU:
		return uint32((uint64(rs1) * uint64(rs2)) >> 32)
	case insts.OpMULHSU:
		return uint32((int64(int32(rs1)) * int64(uint64(rs2))) >> 32)
	case insts.OpDIV:
		return divSigned(rs1, rs2)
	case insts.OpDIVU:
		return divUnsigned(rs1, rs2)
	case insts.OpREM:
		return remSigned(rs1, rs2)
	case insts.OpREMU:
		return remUnsigned(rs1, rs2)
	default:
		return 0
	}
}

// divSigned implements RISC-V's defined DIV semantics: division by zero
// yields -1, and the most-negative/-1 overflow case yields the dividend.
func divSigned(a, b uint32) uint32 {
	sa, sb := int32(a), int32(b)
	if sb == 0 {
		return 0xffffffff
	}
	if sa == -2147483648 && sb == -1 {
		return a
	}
	return uint32(sa / sb)
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xffffffff
	}
	return a / b
}

// remSigned implements RISC-V's defined REM semantics: remainder by zero
// yields the dividend, and the overflow case yields zero.
func remSigned(a, b uint32) uint32 {
	sa, sb := int32(a), int32(b)
	if sb == 0 {
		return a
	}
	if sa == -2147483648 && sb == -1 {
		return 0
	}
	return uint32(sa % sb)
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
