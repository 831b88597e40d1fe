package latency

import "github.com/archsim/rv32ooo/insts"

// Table maps a decoded op (and, for the M-extension's divide/remainder
// ops, its operands) to a cycle latency.
type Table struct {
	config *TimingConfig
}

// NewTable builds a Table over the pinned default latencies.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig builds a Table over an explicit config.
func NewTableWithConfig(cfg *TimingConfig) *Table {
	return &Table{config: cfg}
}

// Kind identifies which functional unit an op belongs to.
type Kind uint8

const (
	KindALU Kind = iota
	KindBLU
	KindMCU
)

// KindOf reports which functional unit executes op.
func KindOf(op insts.Op) Kind {
	switch op {
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU,
		insts.OpJAL, insts.OpJALR:
		return KindBLU
	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW,
		insts.OpSB, insts.OpSH, insts.OpSW:
		return KindMCU
	default:
		return KindALU
	}
}

// Latency returns the fixed latency for an op that does not have
// data-dependent timing. For DIV/DIVU/REM/REMU, use DivideLatency
// instead, since their latency depends on the operands.
func (t *Table) Latency(op insts.Op) uint64 {
	switch op {
	case insts.OpSLL, insts.OpSLLI, insts.OpSRL, insts.OpSRLI, insts.OpSRA, insts.OpSRAI:
		return t.config.ShiftLatency
	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU:
		return t.config.MultiplyLatency
	case insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		return t.config.DivideLatencyMax
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU,
		insts.OpJAL, insts.OpJALR:
		return t.config.BranchLatency
	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW:
		return t.config.LoadLatency
	case insts.OpSB, insts.OpSH, insts.OpSW:
		return t.config.StoreLatency
	case insts.OpECALL, insts.OpEBREAK:
		return t.config.SyscallLatency
	default:
		return t.config.ALULatency
	}
}

// DivideLatency computes the data-dependent latency for DIV/DIVU/REM/
// REMU: a divider with a fast path for division by zero or by a power of
// two, and the pinned worst-case latency otherwise. This models a
// restoring/SRT-style divider's early-out behaviour rather than charging
// every division the same worst-case cost.
func (t *Table) DivideLatency(rs2 uint32) uint64 {
	if rs2 == 0 {
		return t.config.DivideLatencyMin
	}
	if rs2&(rs2-1) == 0 {
		return t.config.DivideLatencyMin
	}
	return t.config.DivideLatencyMax
}

// IsDivideOrRemainder reports whether op has data-dependent latency.
func IsDivideOrRemainder(op insts.Op) bool {
	switch op {
	case insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		return true
	default:
		return false
	}
}

// L1HitLatency and L1MissLatency expose the cache-level latencies for the
// optional MCU-fronting directory cache (timing/cache).
func (t *Table) L1HitLatency() uint64  { return t.config.L1HitLatency }
func (t *Table) L1MissLatency() uint64 { return t.config.L1MissLatency }
