package pipeline

import (
	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/ooo"
)

// bindEntry binds one reservation-station entry to a free unit of kind.
func (p *Pipeline) bindEntry(kind ooo.FUKind, e ooo.RSEntry) {
	var src2 uint32
	if e.HasSrc2 {
		src2 = e.Src2.Value
	}
	switch kind {
	case ooo.FUKindALU:
		p.alus.Accept(e, e.Src1.Value, src2)
	case ooo.FUKindBLU:
		p.blus.Accept(e, e.Src1.Value, src2)
	case ooo.FUKindMCU:
		p.mcus.Accept(e, e.Src1.Value, src2)
	}
}

// isLoadOp reports whether op reads memory (and so is subject to the
// store-ordering hazard check below; stores are never gated by it, since
// their memory side effect is deferred to in-order commit regardless of
// when they execute).
func isLoadOp(op insts.Op) bool {
	switch op {
	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW:
		return true
	default:
		return false
	}
}

// mcuHazard reports whether a ready MCU entry must still wait: a load may
// not issue while any program-order-older, not-yet-committed store could
// still turn out to alias its address (§8's sequential-equivalence law).
func (p *Pipeline) mcuHazard(e ooo.RSEntry) bool {
	if !isLoadOp(e.Inst.Op) {
		return false
	}
	addr := ooo.EffectiveAddress(e.Inst, e.Src1.Value)
	width := ooo.WidthForOp(e.Inst.Op)
	return p.rob.OlderStoreBlocks(e.Seq, addr, width)
}

// doIssue scans the reservation station for ready entries (both sources
// resolved) and binds up to the number of free functional units of each
// required kind, oldest ROB sequence number first, never binding more
// than cfg.IssueLimit entries in total across all three kinds in a
// single cycle. Binding removes the entry from the RSV; a kind with no
// free unit, or a load still shadowed by an unresolved older store,
// simply stalls those entries for another cycle without losing them.
func (p *Pipeline) doIssue() {
	issued := 0
	remaining := func() int { return p.cfg.IssueLimit - issued }

	for _, e := range p.rsv.IssuePick(ooo.FUKindALU, min(p.alus.FreeCount(), remaining()), nil) {
		p.bindEntry(ooo.FUKindALU, e)
		issued++
	}
	for _, e := range p.rsv.IssuePick(ooo.FUKindBLU, min(p.blus.FreeCount(), remaining()), nil) {
		p.bindEntry(ooo.FUKindBLU, e)
		issued++
	}
	for _, e := range p.rsv.IssuePick(ooo.FUKindMCU, min(p.mcus.FreeCount(), remaining()), p.mcuHazard) {
		p.bindEntry(ooo.FUKindMCU, e)
		issued++
	}

	p.stats.Issued += uint64(issued)
	if issued == 0 && p.rsv.Count() > 0 {
		p.stats.IssueStalls++
	}
}
