package emu

import "github.com/archsim/rv32ooo/insts"

// BranchResolution is the outcome the BLU produces for a branch or jump:
// whether control transfers, and to where.
type BranchResolution struct {
	Taken    bool
	NextPC   uint32
	LinkPC   uint32 // PC+4, for JAL/JALR's link-register write
}

// BranchUnit resolves conditional branches and unconditional jumps. It is
// stateless; all inputs (register values, decoded immediate/target) are
// supplied by the caller.
type BranchUnit struct{}

// NewBranchUnit creates a new BranchUnit.
func NewBranchUnit() *BranchUnit {
	return &BranchUnit{}
}

// Resolve computes the taken/not-taken outcome and true next PC for a
// decoded branch or jump, given the register values read for its
// operands.
func (b *BranchUnit) Resolve(inst *insts.Instruction, rs1Val, rs2Val uint32) BranchResolution {
	link := inst.PC + 4

	switch inst.Op {
	case insts.OpJAL:
		return BranchResolution{Taken: true, NextPC: inst.Target, LinkPC: link}
	case insts.OpJALR:
		target := (rs1Val + uint32(int32(inst.Imm))) &^ 1
		return BranchResolution{Taken: true, NextPC: target, LinkPC: link}
	case insts.OpBEQ:
		return b.branchResult(rs1Val == rs2Val, inst, link)
	case insts.OpBNE:
		return b.branchResult(rs1Val != rs2Val, inst, link)
	case insts.OpBLT:
		return b.branchResult(int32(rs1Val) < int32(rs2Val), inst, link)
	case insts.OpBGE:
		return b.branchResult(int32(rs1Val) >= int32(rs2Val), inst, link)
	case insts.OpBLTU:
		return b.branchResult(rs1Val < rs2Val, inst, link)
	case insts.OpBGEU:
		return b.branchResult(rs1Val >= rs2Val, inst, link)
	default:
		return BranchResolution{Taken: false, NextPC: link, LinkPC: link}
	}
}

func (b *BranchUnit) branchResult(taken bool, inst *insts.Instruction, link uint32) BranchResolution {
	if taken {
		return BranchResolution{Taken: true, NextPC: inst.Target, LinkPC: link}
	}
	return BranchResolution{Taken: false, NextPC: link, LinkPC: link}
}
