package pipeline

// decodeBufferCapacity bounds the queue of decoded micro-ops awaiting
// dispatch.
func (p *Pipeline) decodeBufferCapacity() int {
	return p.cfg.NWay * 4
}

// doDecode turns up to NWay raw fetched words into typed micro-ops,
// attaching the prediction recorded for each at fetch. A word that does
// not decode stays at the head of the fetch queue and stalls decode: if a
// squash clears the queue first (the word was on a wrong path) it is
// dropped, and once the ROB and the decode queue have drained with it
// still at the head it is a fatal decode fault (§7) that halts the
// pipeline, finalizing the current snapshot first.
func (p *Pipeline) doDecode() {
	n := p.cfg.NWay
	if n > len(p.fetchQueue) {
		n = len(p.fetchQueue)
	}
	for i := 0; i < n; i++ {
		if len(p.decodeQueue) >= p.decodeBufferCapacity() {
			break
		}
		slot := p.fetchQueue[0]

		inst, err := p.decoder.Decode(slot.word, slot.pc)
		if err != nil {
			if p.rob.Empty() && len(p.decodeQueue) == 0 {
				p.haltWith(HaltDecodeFault, decodeFaultError(err))
			}
			return
		}
		p.fetchQueue = p.fetchQueue[1:]
		inst.PredictedNextPC = slot.predictedNextPC
		inst.PredictorToken = slot.token
		p.decodeQueue = append(p.decodeQueue, inst)
	}
}
