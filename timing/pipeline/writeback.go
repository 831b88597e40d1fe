// doWriteback drains each functional unit array's completed occupants
// (produced by the PRIOR cycle's execute), publishing results into the
// ROB and broadcasting them to any reservation-station entry still
// waiting on that slot, per §4.3's tag-broadcast rule.
package pipeline

func (p *Pipeline) doWriteback() {
	for _, res := range p.alus.Drain() {
		p.rob.Writeback(res)
		p.rsv.Broadcast(res.Slot, res.Value)
	}
	for _, res := range p.blus.Drain() {
		p.rob.Writeback(res)
		p.rsv.Broadcast(res.Slot, res.Value)
	}
	for _, res := range p.mcus.Drain() {
		p.rob.Writeback(res)
		p.rsv.Broadcast(res.Slot, res.Value)
	}
}
