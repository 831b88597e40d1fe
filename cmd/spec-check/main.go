// Package main provides a diagnostic CLI that validates and prints the
// pinned latency table and reports the size of its rv32im opcode list
// after checking the list for duplicates. It does not run the decoder,
// so it does not confirm that the decoder recognises those opcodes.
package main

import (
	"fmt"
	"os"

	"github.com/archsim/rv32ooo/insts"
	"github.com/archsim/rv32ooo/timing/latency"
)

// coveredOps is the full rv32im opcode set the decoder must recognize.
var coveredOps = []insts.Op{
	insts.OpLUI, insts.OpAUIPC, insts.OpJAL, insts.OpJALR,
	insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU,
	insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU,
	insts.OpSB, insts.OpSH, insts.OpSW,
	insts.OpADDI, insts.OpSLTI, insts.OpSLTIU, insts.OpXORI, insts.OpORI, insts.OpANDI,
	insts.OpSLLI, insts.OpSRLI, insts.OpSRAI,
	insts.OpADD, insts.OpSUB, insts.OpSLL, insts.OpSLT, insts.OpSLTU, insts.OpXOR,
	insts.OpSRL, insts.OpSRA, insts.OpOR, insts.OpAND,
	insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU,
	insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU,
	insts.OpFENCE, insts.OpECALL, insts.OpEBREAK,
}

func main() {
	lat := latency.DefaultTimingConfig()
	if err := lat.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "default timing config is invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("pinned latency table:")
	fmt.Printf("  alu=%d shift=%d branch=%d\n", lat.ALULatency, lat.ShiftLatency, lat.BranchLatency)
	fmt.Printf("  load=%d store=%d\n", lat.LoadLatency, lat.StoreLatency)
	fmt.Printf("  multiply=%d divide=[%d,%d]\n", lat.MultiplyLatency, lat.DivideLatencyMin, lat.DivideLatencyMax)
	fmt.Printf("  syscall=%d l1_hit=%d l1_miss=%d\n", lat.SyscallLatency, lat.L1HitLatency, lat.L1MissLatency)

	seen := map[insts.Op]bool{}
	for _, op := range coveredOps {
		seen[op] = true
	}
	if len(seen) != len(coveredOps) {
		fmt.Fprintf(os.Stderr, "duplicate entries in covered-op list\n")
		os.Exit(1)
	}

	fmt.Printf("\ndecoder coverage: %d rv32im opcodes\n", len(coveredOps))
	fmt.Println("OK")
}
