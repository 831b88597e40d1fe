// Package main provides the entry point for rv32sim, a cycle-accurate
// out-of-order rv32im simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/archsim/rv32ooo/emu"
	"github.com/archsim/rv32ooo/loader"
	"github.com/archsim/rv32ooo/timing/core"
	"github.com/archsim/rv32ooo/timing/latency"
	"github.com/archsim/rv32ooo/timing/pipeline"
)

var (
	timing     = flag.Bool("timing", false, "enable out-of-order timing simulation (default: functional interpreter)")
	configPath = flag.String("config", "", "path to CoreConfig JSON file")
	latPath    = flag.String("latency", "", "path to TimingConfig JSON file")
	verbose    = flag.Bool("v", false, "verbose output")

	aluUnits   = flag.Int("alu", 0, "override ALU unit count (0 keeps config value)")
	bluUnits   = flag.Int("blu", 0, "override BLU unit count")
	mcuUnits   = flag.Int("mcu", 0, "override MCU unit count")
	rsvCap     = flag.Int("rsv", 0, "override reservation station capacity")
	robCap     = flag.Int("rob", 0, "override reorder buffer capacity")
	nWay       = flag.Int("n-way", 0, "override fetch/decode/dispatch width")
	issueLimit = flag.Int("issue-limit", -1, "override per-cycle issue/commit cap (0 means total FU count)")
	predMode   = flag.String("branch-prediction", "", "override predictor mode: off, onebit, twobit, twolevel")
	ras        = flag.Bool("return-stack", false, "enable the return-address stack")
	l1         = flag.Bool("l1", false, "enable the L1 data cache")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32sim [options] <program.elf>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading program: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("loaded %s: entry=0x%08x segments=%d\n", programPath, prog.EntryPoint, len(prog.Segments))
	}

	if *timing {
		os.Exit(int(runTiming(prog, programPath)))
	}
	os.Exit(int(runEmulation(prog, programPath)))
}

func runEmulation(prog *loader.Program, programPath string) int32 {
	memory := emu.NewMemory(prog.InitialSP)
	for _, seg := range prog.Segments {
		if err := memory.LoadSegment(seg.VirtAddr, seg.Data); err != nil {
			fmt.Fprintf(os.Stderr, "error loading segment: %v\n", err)
			os.Exit(1)
		}
	}

	interp := emu.NewInterpreter(memory, emu.WithStdout(os.Stdout))
	interp.SetPC(prog.EntryPoint)
	interp.RegFile().WriteReg(2, prog.InitialSP)

	result := interp.Run()
	if result.Err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programPath, result.Err)
		return 1
	}
	if *verbose {
		fmt.Printf("\nprogram: %s\nexit code: %d\ninstructions: %d\n",
			programPath, result.ExitCode, interp.InstructionCount())
	}
	return result.ExitCode
}

func runTiming(prog *loader.Program, programPath string) int32 {
	cfg := pipeline.DefaultCoreConfig()
	if *configPath != "" {
		loaded, err := pipeline.LoadCoreConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading core config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyOverrides(cfg)

	lat := latency.DefaultTimingConfig()
	if *latPath != "" {
		loaded, err := latency.LoadConfig(*latPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading latency config: %v\n", err)
			os.Exit(1)
		}
		lat = loaded
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid core config: %v\n", err)
		os.Exit(1)
	}

	c, err := core.NewCore(prog, cfg, lat, pipeline.WithStdout(os.Stdout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error constructing core: %v\n", err)
		os.Exit(1)
	}
	c.Run()

	stats := c.Stats()
	exitCode := int32(0)
	switch c.HaltCause() {
	case pipeline.HaltExitECALL:
		exitCode = c.ExitCode()
	case pipeline.HaltDecodeFault, pipeline.HaltMemoryFault:
		fmt.Fprintf(os.Stderr, "%s: %v\n", programPath, c.FaultError())
		exitCode = 1
	case pipeline.HaltEbreak:
		exitCode = 0
	}

	fmt.Printf("\nprogram: %s\n", programPath)
	fmt.Printf("exit code: %d\n", exitCode)
	fmt.Printf("committed instructions: %d\n", stats.Committed)
	fmt.Printf("cycles: %d\n", stats.Cycles)
	fmt.Printf("CPI: %.3f\n", stats.CPI())
	fmt.Printf("mispredictions: %d (branches predicted: %d)\n", stats.Mispredictions, stats.BranchesPred)
	fmt.Printf("dispatch stalls: %d  fetch stalls: %d\n", stats.DispatchStalls, stats.FetchStalls)

	return exitCode
}

func applyOverrides(cfg *pipeline.CoreConfig) {
	if *aluUnits > 0 {
		cfg.ALUUnits = *aluUnits
	}
	if *bluUnits > 0 {
		cfg.BLUUnits = *bluUnits
	}
	if *mcuUnits > 0 {
		cfg.MCUUnits = *mcuUnits
	}
	if *rsvCap > 0 {
		cfg.RSVCapacity = *rsvCap
	}
	if *robCap > 0 {
		cfg.ROBCapacity = *robCap
	}
	if *nWay > 0 {
		cfg.NWay = *nWay
	}
	if *issueLimit >= 0 {
		cfg.IssueLimit = *issueLimit
	}
	if *predMode != "" {
		cfg.BranchPrediction = *predMode
	}
	if *ras {
		cfg.ReturnStack = true
	}
	if *l1 {
		cfg.L1Enabled = true
	}
}
