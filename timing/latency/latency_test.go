package latency

import (
	"testing"

	"github.com/archsim/rv32ooo/insts"
)

func TestLatencyKindClassification(t *testing.T) {
	if KindOf(insts.OpADD) != KindALU {
		t.Fatal("ADD should be ALU")
	}
	if KindOf(insts.OpBEQ) != KindBLU {
		t.Fatal("BEQ should be BLU")
	}
	if KindOf(insts.OpLW) != KindMCU {
		t.Fatal("LW should be MCU")
	}
}

func TestDivideLatencyFastPaths(t *testing.T) {
	tbl := NewTable()
	if got := tbl.DivideLatency(0); got != tbl.config.DivideLatencyMin {
		t.Fatalf("divide by zero should be fast-path, got %d", got)
	}
	if got := tbl.DivideLatency(8); got != tbl.config.DivideLatencyMin {
		t.Fatalf("divide by power of two should be fast-path, got %d", got)
	}
	if got := tbl.DivideLatency(7); got != tbl.config.DivideLatencyMax {
		t.Fatalf("divide by non-power-of-two should take max latency, got %d", got)
	}
}

func TestConfigValidateRejectsBadDivideRange(t *testing.T) {
	cfg := DefaultTimingConfig()
	cfg.DivideLatencyMin = 20
	cfg.DivideLatencyMax = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for min > max")
	}
}

func TestConfigCloneIsIndependent(t *testing.T) {
	cfg := DefaultTimingConfig()
	clone := cfg.Clone()
	clone.ALULatency = 99
	if cfg.ALULatency == 99 {
		t.Fatal("clone should not alias the original")
	}
}
