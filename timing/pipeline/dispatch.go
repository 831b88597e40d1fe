package pipeline

import (
	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/ooo"
)

// destRegister reports the architectural register an instruction writes
// and whether it writes one at all.
func destRegister(inst *insts.Instruction) (uint8, bool) {
	switch inst.Op {
	case insts.OpSB, insts.OpSH, insts.OpSW,
		insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU,
		insts.OpFENCE, insts.OpECALL, insts.OpEBREAK:
		return 0, false
	default:
		return inst.Rd, inst.Rd != 0
	}
}

// resolveSource looks an architectural register up in the rename map,
// returning an Operand that is either already resolved (from the
// architectural file or a completed-but-uncommitted ROB slot) or pending
// on the producing slot.
func (p *Pipeline) resolveSource(reg uint8) ooo.Operand {
	if slot, live := p.rename.Lookup(reg); live {
		entry := p.rob.Entry(slot)
		if entry.Valid && entry.State == ooo.StateCompleted {
			return ooo.Resolved(entry.Value)
		}
		return ooo.Pending(slot)
	}
	return ooo.Resolved(p.regs.ReadReg(reg))
}

// doDispatch allocates an ROB slot and (for ALU/BLU/MCU-class ops) a
// reservation-station entry for up to NWay decoded micro-ops, renaming
// their source operands and registering their destination. Dispatch
// stalls (deferring, not dropping, the micro-op) when the ROB or RSV is
// full. ECALL/EBREAK/FENCE carry no functional-unit work and are marked
// complete immediately so they simply wait their turn to commit in order.
func (p *Pipeline) doDispatch() {
	for i := 0; i < p.cfg.NWay; i++ {
		if len(p.decodeQueue) == 0 {
			return
		}
		inst := p.decodeQueue[0]

		if p.rob.Full() {
			p.stats.DispatchStalls++
			return
		}

		switch inst.Op {
		case insts.OpFENCE, insts.OpECALL, insts.OpEBREAK:
			slot, ok := p.rob.Allocate(inst, false)
			if !ok {
				p.stats.DispatchStalls++
				return
			}
			e := p.rob.Entry(slot)
			e.IsECALL = inst.Op == insts.OpECALL
			e.IsEBREAK = inst.Op == insts.OpEBREAK
			p.rob.Writeback(ooo.WritebackResult{Slot: slot})
			p.decodeQueue = p.decodeQueue[1:]
			continue
		}

		if p.rsv.Full() {
			p.stats.DispatchStalls++
			return
		}

		entry := ooo.RSEntry{Inst: inst, Kind: ooo.KindForOp(inst.Op)}
		switch inst.Op {
		case insts.OpLUI, insts.OpAUIPC:
			entry.Src1 = ooo.Resolved(uint32(inst.Imm))
		case insts.OpJAL:
			entry.Src1 = ooo.Resolved(0)
		case insts.OpJALR:
			entry.Src1 = p.resolveSource(inst.Rs1)
		case insts.OpADDI, insts.OpSLTI, insts.OpSLTIU, insts.OpXORI, insts.OpORI,
			insts.OpANDI, insts.OpSLLI, insts.OpSRLI, insts.OpSRAI:
			entry.Src1 = p.resolveSource(inst.Rs1)
			entry.Src2 = ooo.Resolved(uint32(inst.Imm))
			entry.HasSrc2 = true
		case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
			entry.Src1 = p.resolveSource(inst.Rs1)
		case insts.OpSB, insts.OpSH, insts.OpSW:
			entry.Src1 = p.resolveSource(inst.Rs1)
			entry.Src2 = p.resolveSource(inst.Rs2)
			entry.HasSrc2 = true
		default: // R-type ALU ops and the six conditional branches
			entry.Src1 = p.resolveSource(inst.Rs1)
			entry.Src2 = p.resolveSource(inst.Rs2)
			entry.HasSrc2 = true
		}

		speculative := p.rob.HasPendingBranch()
		slot, ok := p.rob.Allocate(inst, speculative)
		if !ok {
			p.stats.DispatchStalls++
			return
		}
		robEntry := p.rob.Entry(slot)
		dest, hasDest := destRegister(inst)
		robEntry.HasDest = hasDest
		robEntry.Dest = dest
		robEntry.IsBranch = inst.IsBranch || inst.IsJump
		robEntry.IsStore = inst.Op == insts.OpSB || inst.Op == insts.OpSH || inst.Op == insts.OpSW
		robEntry.PredictorToken = inst.PredictorToken

		entry.DestSlot = slot
		entry.Seq = robEntry.Seq
		if !p.rsv.DispatchIn(entry) {
			// Should not happen: Full() was checked above and nothing
			// else mutates RSV between the check and here.
			p.stats.DispatchStalls++
			return
		}

		if hasDest {
			p.rename.SetProducer(dest, slot)
		}
		p.decodeQueue = p.decodeQueue[1:]
	}
}
