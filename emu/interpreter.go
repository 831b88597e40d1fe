package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/archsim/rv32ooo/insts"
)

// StepResult reports the outcome of one sequential instruction step.
type StepResult struct {
	Exited   bool
	ExitCode int32
	Err      error
}

// Interpreter is a strictly sequential, in-order reference model: fetch,
// decode, execute, writeback, one instruction per Step call, no
// speculation. It is the oracle the out-of-order core's committed state
// is checked against (the "committed state equals what a reference
// sequential interpreter would produce" equivalence law).
type Interpreter struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder
	alu     *ALU
	branch  *BranchUnit
	lsu     *LoadStoreUnit
	syscall *SyscallHandler

	instructionCount uint64
	maxInstructions   uint64
}

// InterpreterOption configures an Interpreter at construction time.
type InterpreterOption func(*Interpreter)

// WithStdout routes ECALL character output to w.
func WithStdout(w io.Writer) InterpreterOption {
	return func(i *Interpreter) { i.syscall = NewSyscallHandler(w) }
}

// WithMaxInstructions bounds Run's instruction budget (0 means
// unbounded).
func WithMaxInstructions(n uint64) InterpreterOption {
	return func(i *Interpreter) { i.maxInstructions = n }
}

// NewInterpreter builds an Interpreter over a fresh register file and the
// given memory image.
func NewInterpreter(memory *Memory, opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		regFile: NewRegFile(),
		memory:  memory,
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
		branch:  NewBranchUnit(),
	}
	i.lsu = NewLoadStoreUnit(memory)
	for _, opt := range opts {
		opt(i)
	}
	if i.syscall == nil {
		i.syscall = NewSyscallHandler(os.Stdout)
	}
	return i
}

// RegFile exposes the interpreter's architectural register file.
func (i *Interpreter) RegFile() *RegFile { return i.regFile }

// Memory exposes the interpreter's memory image.
func (i *Interpreter) Memory() *Memory { return i.memory }

// InstructionCount returns the number of instructions committed so far.
func (i *Interpreter) InstructionCount() uint64 { return i.instructionCount }

// SetPC sets the program counter, typically to the loader-provided entry
// point before the first Step.
func (i *Interpreter) SetPC(pc uint32) { i.regFile.PC = pc }

// Step executes exactly one instruction.
func (i *Interpreter) Step() StepResult {
	if i.maxInstructions != 0 && i.instructionCount >= i.maxInstructions {
		return StepResult{Exited: true, ExitCode: 0}
	}

	word, err := i.memory.Read32(i.regFile.PC)
	if err != nil {
		return StepResult{Err: fmt.Errorf("fetch: %w", err)}
	}

	inst, err := i.decoder.Decode(word, i.regFile.PC)
	if err != nil {
		return StepResult{Err: err}
	}

	i.instructionCount++
	return i.execute(inst)
}

// Run steps until exit, fault, or EBREAK.
func (i *Interpreter) Run() StepResult {
	for {
		r := i.Step()
		if r.Exited || r.Err != nil {
			return r
		}
	}
}

func (i *Interpreter) execute(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpFENCE:
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpLUI:
		i.regFile.WriteReg(inst.Rd, uint32(inst.Imm))
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpAUIPC:
		i.regFile.WriteReg(inst.Rd, inst.PC+uint32(inst.Imm))
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpJAL, insts.OpJALR:
		rs1 := i.regFile.ReadReg(inst.Rs1)
		res := i.branch.Resolve(inst, rs1, 0)
		i.regFile.WriteReg(inst.Rd, res.LinkPC)
		i.regFile.PC = res.NextPC
		return StepResult{}

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		rs1 := i.regFile.ReadReg(inst.Rs1)
		rs2 := i.regFile.ReadReg(inst.Rs2)
		res := i.branch.Resolve(inst, rs1, rs2)
		i.regFile.PC = res.NextPC
		return StepResult{}

	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW:
		base := i.regFile.ReadReg(inst.Rs1)
		addr := base + uint32(inst.Imm)
		v, err := i.load(inst.Op, addr)
		if err != nil {
			return StepResult{Err: fmt.Errorf("load: %w", err)}
		}
		i.regFile.WriteReg(inst.Rd, v)
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpSB, insts.OpSH, insts.OpSW:
		base := i.regFile.ReadReg(inst.Rs1)
		addr := base + uint32(inst.Imm)
		val := i.regFile.ReadReg(inst.Rs2)
		if err := i.store(inst.Op, addr, val); err != nil {
			return StepResult{Err: fmt.Errorf("store: %w", err)}
		}
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpADDI, insts.OpSLTI, insts.OpSLTIU, insts.OpXORI, insts.OpORI, insts.OpANDI,
		insts.OpSLLI, insts.OpSRLI, insts.OpSRAI:
		rs1 := i.regFile.ReadReg(inst.Rs1)
		result := i.alu.Execute(inst.Op, rs1, uint32(inst.Imm))
		i.regFile.WriteReg(inst.Rd, result)
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpADD, insts.OpSUB, insts.OpSLL, insts.OpSLT, insts.OpSLTU, insts.OpXOR,
		insts.OpSRL, insts.OpSRA, insts.OpOR, insts.OpAND,
		insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU,
		insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		rs1 := i.regFile.ReadReg(inst.Rs1)
		rs2 := i.regFile.ReadReg(inst.Rs2)
		result := i.alu.Execute(inst.Op, rs1, rs2)
		i.regFile.WriteReg(inst.Rd, result)
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpECALL:
		a0 := i.regFile.ReadReg(RegA0)
		a1 := i.regFile.ReadReg(RegA1)
		a7 := i.regFile.ReadReg(RegA7)
		outcome, err := i.syscall.Handle(a0, a1, a7)
		if err != nil {
			return StepResult{Err: err}
		}
		if outcome.Exit {
			return StepResult{Exited: true, ExitCode: outcome.ExitCode}
		}
		i.regFile.PC += 4
		return StepResult{}

	case insts.OpEBREAK:
		return StepResult{Err: fmt.Errorf("ebreak at pc=0x%08x", inst.PC)}

	default:
		return StepResult{Err: fmt.Errorf("unimplemented op %v at pc=0x%08x", inst.Op, inst.PC)}
	}
}

func (i *Interpreter) load(op insts.Op, addr uint32) (uint32, error) {
	switch op {
	case insts.OpLB:
		return i.lsu.LB(addr)
	case insts.OpLBU:
		return i.lsu.LBU(addr)
	case insts.OpLH:
		return i.lsu.LH(addr)
	case insts.OpLHU:
		return i.lsu.LHU(addr)
	default:
		return i.lsu.LW(addr)
	}
}

func (i *Interpreter) store(op insts.Op, addr, val uint32) error {
	switch op {
	case insts.OpSB:
		return i.lsu.SB(addr, val)
	case insts.OpSH:
		return i.lsu.SH(addr, val)
	default:
		return i.lsu.SW(addr, val)
	}
}
