package pipeline

// doExecute advances every functional unit's shift register one cycle,
// computing results for units whose latency has just elapsed. Results
// become visible to writeback starting next cycle, per §4.6's ordering.
func (p *Pipeline) doExecute() {
	p.alus.Tick()
	p.blus.Tick()
	p.mcus.Tick()
}
