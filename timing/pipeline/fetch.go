package pipeline

import "github.com/archsim/rv32ooo/insts"

// fetchBufferCapacity bounds the queue of raw fetched words awaiting
// decode; sized generously against NWay so a single-cycle decode stall
// cannot immediately back-pressure fetch.
func (p *Pipeline) fetchBufferCapacity() int {
	return p.cfg.NWay * 4
}

// doFetch pulls up to NWay words from memory at the current predicted PC,
// peeking each word's control-flow shape to consult the branch predictor
// before the real decode stage (next cycle) classifies it for real.
// Fetch stalls when the fetch buffer is full. It also stops at a PC that
// cannot be read; if nothing older is still in flight (ROB, fetch and
// decode queues all empty) that PC is on the committed path and the read
// error halts the pipeline as a memory fault, otherwise a later squash may
// redirect fetch.
func (p *Pipeline) doFetch() {
	for i := 0; i < p.cfg.NWay; i++ {
		if len(p.fetchQueue) >= p.fetchBufferCapacity() {
			p.stats.FetchStalls++
			return
		}

		word, err := p.memory.Read32(p.pc)
		if err != nil {
			// Stop advancing so the queue doesn't fill with garbage; the
			// fault is fatal only once nothing older can redirect fetch.
			if p.rob.Empty() && len(p.fetchQueue) == 0 && len(p.decodeQueue) == 0 {
				p.haltWith(HaltMemoryFault, err)
			}
			return
		}

		pc := p.pc
		slot := fetchSlot{word: word, pc: pc}
		peek, decErr := p.decoder.Decode(word, pc)

		switch {
		case decErr != nil:
			// Unclassifiable; predict sequential and let decode fault.
			slot.predictedNextPC = pc + 4
			slot.token = p.pred.PredictSequential()

		case peek.IsBranch:
			slot.isControlFlow = true
			p.stats.BranchesPred++
			taken, tok := p.pred.PredictBranch(pc)
			if taken {
				slot.predictedNextPC = peek.Target
			} else {
				slot.predictedNextPC = pc + 4
			}
			slot.token = tok

		case peek.Op == insts.OpJAL:
			slot.isControlFlow = true
			slot.predictedNextPC = peek.Target
			tok := p.pred.PredictSequential()
			if peek.Rd != 0 {
				tok = p.pred.PushReturn(tok, pc+4)
			}
			slot.token = tok

		case peek.Op == insts.OpJALR:
			slot.isControlFlow = true
			isReturn := peek.Imm == 0 && (peek.Rs1 == 1 || peek.Rs1 == 5)
			if isReturn {
				target, ok, tok := p.pred.PopReturn(p.pred.PredictSequential())
				if ok {
					slot.predictedNextPC = target
					slot.token = tok
					break
				}
				slot.token = tok
			} else {
				slot.token = p.pred.PredictSequential()
			}
			slot.predictedNextPC = pc + 4

		default:
			slot.predictedNextPC = pc + 4
			slot.token = p.pred.PredictSequential()
		}

		p.fetchQueue = append(p.fetchQueue, slot)
		p.pc = slot.predictedNextPC
		p.stats.Fetched++
	}
}
