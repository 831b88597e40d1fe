package insts

import "fmt"

// Op identifies the operation an Instruction performs.
type Op uint8

const (
	OpUnknown Op = iota

	OpLUI
	OpAUIPC

	OpJAL
	OpJALR

	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	OpSB
	OpSH
	OpSW

	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	OpFENCE
	OpECALL
	OpEBREAK
)

// Format names the instruction encoding family, per the rv32im base plus
// the M-extension's shared R-type encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatSystem
)

// Instruction is a decoded micro-op. The decoder populates every field
// except PredictedNextPC and PredictorToken, which are filled in by the
// pipeline's fetch stage once the branch predictor has been consulted.
type Instruction struct {
	Op     Op
	Format Format

	Rd, Rs1, Rs2 uint8
	Imm          int32

	PC      uint32
	RawWord uint32

	// IsBranch is true for the six conditional branches.
	IsBranch bool
	// IsJump is true for JAL and JALR (unconditional control transfer).
	IsJump bool
	// Target is the statically known taken target (PC+imm) for branches
	// and JAL. JALR's target depends on a register value and is resolved
	// by the BLU at execute time instead.
	Target uint32

	// PredictedNextPC and PredictorToken are set post-decode by the
	// pipeline's fetch stage.
	PredictedNextPC uint32
	PredictorToken  interface{}
}

// DecodeFault reports an unrecognised or malformed instruction word.
type DecodeFault struct {
	PC   uint32
	Word uint32
}

func (f *DecodeFault) Error() string {
	return fmt.Sprintf("decode fault at pc=0x%08x word=0x%08x", f.PC, f.Word)
}

// Decoder turns 32-bit words into Instruction values. It holds no state;
// a single Decoder may be shared across goroutines or cycles.
type Decoder struct{}

// NewDecoder creates a new rv32im decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode classifies word (fetched from pc) into an Instruction, or
// returns a *DecodeFault if no known format matches.
func (d *Decoder) Decode(word uint32, pc uint32) (*Instruction, error) {
	inst := &Instruction{PC: pc, RawWord: word}

	opcode := word & 0x7f

	switch {
	case d.isLUI(opcode):
		d.decodeLUI(word, inst)
	case d.isAUIPC(opcode):
		d.decodeAUIPC(word, inst)
	case d.isJAL(opcode):
		d.decodeJAL(word, inst)
	case d.isJALR(opcode):
		d.decodeJALR(word, inst)
	case d.isBranch(opcode):
		if err := d.decodeBranch(word, inst); err != nil {
			return nil, err
		}
	case d.isLoad(opcode):
		if err := d.decodeLoad(word, inst); err != nil {
			return nil, err
		}
	case d.isStore(opcode):
		if err := d.decodeStore(word, inst); err != nil {
			return nil, err
		}
	case d.isOpImm(opcode):
		if err := d.decodeOpImm(word, inst); err != nil {
			return nil, err
		}
	case d.isOp(opcode):
		if err := d.decodeOp(word, inst); err != nil {
			return nil, err
		}
	case d.isMiscMem(opcode):
		d.decodeMiscMem(word, inst)
	case d.isSystem(opcode):
		if err := d.decodeSystem(word, inst); err != nil {
			return nil, err
		}
	default:
		return nil, &DecodeFault{PC: pc, Word: word}
	}

	return inst, nil
}

// --- opcode[6:0] classifiers -------------------------------------------------

func (d *Decoder) isLUI(opcode uint32) bool     { return opcode == 0x37 }
func (d *Decoder) isAUIPC(opcode uint32) bool   { return opcode == 0x17 }
func (d *Decoder) isJAL(opcode uint32) bool     { return opcode == 0x6f }
func (d *Decoder) isJALR(opcode uint32) bool    { return opcode == 0x67 }
func (d *Decoder) isBranch(opcode uint32) bool  { return opcode == 0x63 }
func (d *Decoder) isLoad(opcode uint32) bool    { return opcode == 0x03 }
func (d *Decoder) isStore(opcode uint32) bool   { return opcode == 0x23 }
func (d *Decoder) isOpImm(opcode uint32) bool   { return opcode == 0x13 }
func (d *Decoder) isOp(opcode uint32) bool      { return opcode == 0x33 }
func (d *Decoder) isMiscMem(opcode uint32) bool { return opcode == 0x0f }
func (d *Decoder) isSystem(opcode uint32) bool  { return opcode == 0x73 }

// --- field extraction --------------------------------------------------------

func rd(word uint32) uint8     { return uint8((word >> 7) & 0x1f) }
func funct3(word uint32) uint32 { return (word >> 12) & 0x7 }
func rs1(word uint32) uint8    { return uint8((word >> 15) & 0x1f) }
func rs2(word uint32) uint8    { return uint8((word >> 20) & 0x1f) }
func funct7(word uint32) uint32 { return (word >> 25) & 0x7f }

func immI(word uint32) int32 {
	return int32(word) >> 20
}

func immS(word uint32) int32 {
	hi := (word >> 25) & 0x7f
	lo := (word >> 7) & 0x1f
	raw := (hi << 5) | lo
	// sign-extend from bit 11
	return int32(raw<<20) >> 20
}

func immB(word uint32) int32 {
	b12 := (word >> 31) & 0x1
	b11 := (word >> 7) & 0x1
	b10_5 := (word >> 25) & 0x3f
	b4_1 := (word >> 8) & 0xf
	raw := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
	return int32(raw<<19) >> 19
}

func immU(word uint32) int32 {
	return int32(word & 0xfffff000)
}

func immJ(word uint32) int32 {
	b20 := (word >> 31) & 0x1
	b19_12 := (word >> 12) & 0xff
	b11 := (word >> 20) & 0x1
	b10_1 := (word >> 21) & 0x3ff
	raw := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
	return int32(raw<<11) >> 11
}

// --- per-format decoders ------------------------------------------------------

// decodeLUI handles bits [6:0] == 0110111 (U-type): Rd = imm<<12.
func (d *Decoder) decodeLUI(word uint32, inst *Instruction) {
	inst.Format = FormatU
	inst.Op = OpLUI
	inst.Rd = rd(word)
	inst.Imm = immU(word)
}

// decodeAUIPC handles bits [6:0] == 0010111 (U-type): Rd = PC + imm<<12.
func (d *Decoder) decodeAUIPC(word uint32, inst *Instruction) {
	inst.Format = FormatU
	inst.Op = OpAUIPC
	inst.Rd = rd(word)
	inst.Imm = immU(word)
}

// decodeJAL handles bits [6:0] == 1101111 (J-type): Rd = PC+4, target = PC+imm.
func (d *Decoder) decodeJAL(word uint32, inst *Instruction) {
	inst.Format = FormatJ
	inst.Op = OpJAL
	inst.Rd = rd(word)
	inst.Imm = immJ(word)
	inst.IsJump = true
	inst.Target = uint32(int32(inst.PC) + inst.Imm)
}

// decodeJALR handles bits [6:0] == 1100111 (I-type): target = (Rs1+imm)&~1.
// The target is register-dependent, so Target is left unresolved here; the
// BLU computes it at execute.
func (d *Decoder) decodeJALR(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Op = OpJALR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
	inst.IsJump = true
}

// decodeBranch handles bits [6:0] == 1100011 (B-type). funct3 selects the
// condition; target = PC + imm is statically known even though takenness
// is not.
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) error {
	inst.Format = FormatB
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immB(word)
	inst.IsBranch = true
	inst.Target = uint32(int32(inst.PC) + inst.Imm)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpBEQ
	case 0b001:
		inst.Op = OpBNE
	case 0b100:
		inst.Op = OpBLT
	case 0b101:
		inst.Op = OpBGE
	case 0b110:
		inst.Op = OpBLTU
	case 0b111:
		inst.Op = OpBGEU
	default:
		return &DecodeFault{PC: inst.PC, Word: word}
	}
	return nil
}

// decodeLoad handles bits [6:0] == 0000011 (I-type).
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) error {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpLB
	case 0b001:
		inst.Op = OpLH
	case 0b010:
		inst.Op = OpLW
	case 0b100:
		inst.Op = OpLBU
	case 0b101:
		inst.Op = OpLHU
	default:
		return &DecodeFault{PC: inst.PC, Word: word}
	}
	return nil
}

// decodeStore handles bits [6:0] == 0100011 (S-type).
func (d *Decoder) decodeStore(word uint32, inst *Instruction) error {
	inst.Format = FormatS
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immS(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpSB
	case 0b001:
		inst.Op = OpSH
	case 0b010:
		inst.Op = OpSW
	default:
		return &DecodeFault{PC: inst.PC, Word: word}
	}
	return nil
}

// decodeOpImm handles bits [6:0] == 0010011 (I-type arithmetic). SLLI and
// SRLI/SRAI encode their shift amount in the low 5 bits of the immediate
// field and distinguish logical/arithmetic shift via bit 30.
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) error {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpADDI
		inst.Imm = immI(word)
	case 0b010:
		inst.Op = OpSLTI
		inst.Imm = immI(word)
	case 0b011:
		inst.Op = OpSLTIU
		inst.Imm = immI(word)
	case 0b100:
		inst.Op = OpXORI
		inst.Imm = immI(word)
	case 0b110:
		inst.Op = OpORI
		inst.Imm = immI(word)
	case 0b111:
		inst.Op = OpANDI
		inst.Imm = immI(word)
	case 0b001:
		inst.Op = OpSLLI
		inst.Imm = int32(rs2(word)) // shift amount in bits [24:20]
	case 0b101:
		if funct7(word) == 0b0100000 {
			inst.Op = OpSRAI
		} else {
			inst.Op = OpSRLI
		}
		inst.Imm = int32(rs2(word))
	default:
		return &DecodeFault{PC: inst.PC, Word: word}
	}
	return nil
}

// decodeOp handles bits [6:0] == 0110011 (R-type): funct7 == 0000001
// selects the M-extension (multiply/divide/remainder); 0000000/0100000
// select the base integer ALU ops.
func (d *Decoder) decodeOp(word uint32, inst *Instruction) error {
	inst.Format = FormatR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)

	f7 := funct7(word)
	f3 := funct3(word)

	if f7 == 0b0000001 {
		switch f3 {
		case 0b000:
			inst.Op = OpMUL
		case 0b001:
			inst.Op = OpMULH
		case 0b010:
			inst.Op = OpMULHSU
		case 0b011:
			inst.Op = OpMULHU
		case 0b100:
			inst.Op = OpDIV
		case 0b101:
			inst.Op = OpDIVU
		case 0b110:
			inst.Op = OpREM
		case 0b111:
			inst.Op = OpREMU
		default:
			return &DecodeFault{PC: inst.PC, Word: word}
		}
		return nil
	}

	switch f3 {
	case 0b000:
		if f7 == 0b0100000 {
			inst.Op = OpSUB
		} else {
			inst.Op = OpADD
		}
	case 0b001:
		inst.Op = OpSLL
	case 0b010:
		inst.Op = OpSLT
	case 0b011:
		inst.Op = OpSLTU
	case 0b100:
		inst.Op = OpXOR
	case 0b101:
		if f7 == 0b0100000 {
			inst.Op = OpSRA
		} else {
			inst.Op = OpSRL
		}
	case 0b110:
		inst.Op = OpOR
	case 0b111:
		inst.Op = OpAND
	default:
		return &DecodeFault{PC: inst.PC, Word: word}
	}
	return nil
}

// decodeMiscMem handles FENCE, which this simulator treats as a no-op
// since there is no memory-ordering model to enforce (single in-flight
// memory image, no multi-hart coherence).
func (d *Decoder) decodeMiscMem(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Op = OpFENCE
}

// decodeSystem handles ECALL/EBREAK, distinguished by the immediate field.
func (d *Decoder) decodeSystem(word uint32, inst *Instruction) error {
	inst.Format = FormatSystem
	imm := uint32(word) >> 20
	switch imm {
	case 0x000:
		inst.Op = OpECALL
	case 0x001:
		inst.Op = OpEBREAK
	default:
		return &DecodeFault{PC: inst.PC, Word: word}
	}
	return nil
}
