package pipeline

import "github.com/archsim/rv32ooo/timing/predictor"

// squash discards every ROB entry, reservation-station entry and
// functional-unit occupant younger than the mispredicting branch at
// mispredictSlot, rebuilds the rename map from the survivors, redirects
// fetch to the resolved true-next-PC, and rolls the predictor back to its
// state immediately before the mispredicting branch was fetched (§4.5).
func (p *Pipeline) squash(mispredictSlot int, trueNextPC uint32, token predictor.Token) {
	discarded := p.rob.DiscardedSlots(mispredictSlot)
	discardedSet := make(map[int]bool, len(discarded))
	for _, s := range discarded {
		discardedSet[s] = true
		if p.rob.Entry(s).Speculative {
			p.stats.SpeculativeSquashed++
		}
	}

	p.rob.SquashAfter(mispredictSlot)
	p.rsv.SquashSlots(discardedSet)
	p.alus.SquashSlots(discardedSet)
	p.blus.SquashSlots(discardedSet)
	p.mcus.SquashSlots(discardedSet)

	surviving := make(map[int]bool, p.rob.Count())
	for _, s := range p.rob.Slots() {
		surviving[s] = true
	}
	p.rename.RebuildAfterSquash(surviving)

	p.fetchQueue = nil
	p.decodeQueue = nil

	p.pc = trueNextPC
	p.pred.Restore(token)
}
