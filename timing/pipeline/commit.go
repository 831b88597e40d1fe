package pipeline

import (
	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/timing/ooo"
	"github.com/archsim/rv32ooo/timing/predictor"
)

type haltError string

func (h haltError) Error() string { return string(h) }

const errEbreak haltError = "ebreak"

// doCommit retires up to IssueLimit completed entries from the ROB head,
// in order, applying each entry's side effect to architectural state:
// register write (dropped for x0), memory store, PC update, and predictor
// training for conditional branches. A fatal fault or EBREAK at the head
// stops the pipeline cleanly once its entry is reached; a mispredicted
// branch triggers squash before any later entry in this cycle commits.
func (p *Pipeline) doCommit() {
	for i := 0; i < p.cfg.IssueLimit; i++ {
		slot, ok := p.rob.HeadSlot()
		if !ok {
			return
		}
		head := p.rob.Entry(slot)
		if head.State != ooo.StateCompleted {
			return
		}

		if head.Fault != nil {
			p.rob.CommitHead()
			p.haltWith(HaltMemoryFault, head.Fault)
			return
		}
		if head.IsEBREAK {
			p.rob.CommitHead()
			p.haltWith(HaltEbreak, errEbreak)
			return
		}

		committed, ok := p.rob.CommitHead()
		if !ok {
			return
		}
		p.stats.Committed++

		if committed.IsECALL {
			a0 := p.regs.ReadReg(emu.RegA0)
			a1 := p.regs.ReadReg(emu.RegA1)
			a7 := p.regs.ReadReg(emu.RegA7)
			outcome, err := p.syscall.Handle(a0, a1, a7)
			if err != nil {
				p.haltWith(HaltMemoryFault, err)
				return
			}
			if outcome.Exit {
				p.exitCode = outcome.ExitCode
				p.haltWith(HaltExitECALL, nil)
				return
			}
			continue
		}

		if committed.HasDest {
			p.regs.WriteReg(committed.Dest, committed.Value)
		}
		p.rename.ClearIfOwner(committed.Dest, slot)

		if committed.IsStore {
			p.applyStore(committed)
		}

		if committed.IsBranch {
			inst := committed.Inst
			tok, _ := committed.PredictorToken.(predictor.Token)
			if inst.IsBranch {
				p.pred.Update(inst.PC, committed.BranchTaken, tok)
			}
			if committed.Mispredicted {
				p.stats.Mispredictions++
				p.squash(slot, committed.BranchTarget, tok)
				return
			}
		}
	}
}

// applyStore performs a committed store's memory side effect. Stores
// carry only their address and payload through execute/writeback; the
// actual write happens here, in order, so a squashed store never touches
// memory.
func (p *Pipeline) applyStore(e ooo.Entry) {
	var err error
	switch e.StoreWidth {
	case 1:
		err = p.memAcc.SB(e.StoreAddr, e.StoreValue)
	case 2:
		err = p.memAcc.SH(e.StoreAddr, e.StoreValue)
	default:
		err = p.memAcc.SW(e.StoreAddr, e.StoreValue)
	}
	if err != nil {
		p.haltWith(HaltMemoryFault, err)
	}
}
