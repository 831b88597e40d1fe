// Package benchmarks assembles rv32im byte programs for the end-to-end
// scenarios and runs them against the out-of-order core, the way the teacher's own benchmarks package hand
// assembles ARM64 machine code for its microbenchmark suite.
package benchmarks

import "fmt"

const (
	opLUI    = 0x37
	opAUIPC  = 0x17
	opJAL    = 0x6f
	opJALR   = 0x67
	opBranch = 0x63
	opLoad   = 0x03
	opStore  = 0x23
	opImm    = 0x13
	opReg    = 0x33
	opSystem = 0x73
)

func encodeR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeI(imm int32, rs1, funct3, rd, opcode uint32) uint32 {
	return (uint32(imm)&0xfff)<<20 | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeS(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	hi := (u >> 5) & 0x7f
	lo := u & 0x1f
	return (hi << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (lo << 7) | opcode
}

func encodeB(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	b12 := (u >> 12) & 0x1
	b11 := (u >> 11) & 0x1
	b10_5 := (u >> 5) & 0x3f
	b4_1 := (u >> 1) & 0xf
	return (b12 << 31) | (b10_5 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (b4_1 << 8) | (b11 << 7) | opcode
}

func encodeU(imm int32, rd, opcode uint32) uint32 {
	return (uint32(imm) & 0xfffff000) | (rd << 7) | opcode
}

func encodeJ(imm int32, rd, opcode uint32) uint32 {
	u := uint32(imm)
	b20 := (u >> 20) & 0x1
	b19_12 := (u >> 12) & 0xff
	b11 := (u >> 11) & 0x1
	b10_1 := (u >> 1) & 0x3ff
	return (b20 << 31) | (b10_1 << 21) | (b11 << 20) | (b19_12 << 12) | (rd << 7) | opcode
}

// -- mnemonic-level instruction constructors, taking register numbers ------

func addi(rd, rs1 uint32, imm int32) uint32  { return encodeI(imm, rs1, 0b000, rd, opImm) }
func slti(rd, rs1 uint32, imm int32) uint32  { return encodeI(imm, rs1, 0b010, rd, opImm) }
func xori(rd, rs1 uint32, imm int32) uint32  { return encodeI(imm, rs1, 0b100, rd, opImm) }
func ori(rd, rs1 uint32, imm int32) uint32   { return encodeI(imm, rs1, 0b110, rd, opImm) }
func andi(rd, rs1 uint32, imm int32) uint32  { return encodeI(imm, rs1, 0b111, rd, opImm) }
func slli(rd, rs1 uint32, shamt uint32) uint32 {
	return encodeI(int32(shamt), rs1, 0b001, rd, opImm)
}
func srli(rd, rs1 uint32, shamt uint32) uint32 {
	return encodeI(int32(shamt), rs1, 0b101, rd, opImm)
}
func srai(rd, rs1 uint32, shamt uint32) uint32 {
	return encodeI(int32(shamt)|(0b0100000<<5), rs1, 0b101, rd, opImm)
}

func add(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000000, rs2, rs1, 0b000, rd, opReg) }
func sub(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0100000, rs2, rs1, 0b000, rd, opReg) }
func sltu(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b011, rd, opReg) }
func slt(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000000, rs2, rs1, 0b010, rd, opReg) }
func and(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000000, rs2, rs1, 0b111, rd, opReg) }
func or(rd, rs1, rs2 uint32) uint32   { return encodeR(0b0000000, rs2, rs1, 0b110, rd, opReg) }
func xor(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000000, rs2, rs1, 0b100, rd, opReg) }
func mul(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000001, rs2, rs1, 0b000, rd, opReg) }

func lui(rd uint32, imm int32) uint32   { return encodeU(imm, rd, opLUI) }
func auipc(rd uint32, imm int32) uint32 { return encodeU(imm, rd, opAUIPC) }

func lb(rd, rs1 uint32, imm int32) uint32  { return encodeI(imm, rs1, 0b000, rd, opLoad) }
func lbu(rd, rs1 uint32, imm int32) uint32 { return encodeI(imm, rs1, 0b100, rd, opLoad) }
func lw(rd, rs1 uint32, imm int32) uint32  { return encodeI(imm, rs1, 0b010, rd, opLoad) }

func sb(rs2, rs1 uint32, imm int32) uint32 { return encodeS(imm, rs2, rs1, 0b000, opStore) }
func sw(rs2, rs1 uint32, imm int32) uint32 { return encodeS(imm, rs2, rs1, 0b010, opStore) }

func beq(rs1, rs2 uint32, imm int32) uint32  { return encodeB(imm, rs2, rs1, 0b000, opBranch) }
func bne(rs1, rs2 uint32, imm int32) uint32  { return encodeB(imm, rs2, rs1, 0b001, opBranch) }
func blt(rs1, rs2 uint32, imm int32) uint32  { return encodeB(imm, rs2, rs1, 0b100, opBranch) }
func bge(rs1, rs2 uint32, imm int32) uint32  { return encodeB(imm, rs2, rs1, 0b101, opBranch) }
func bltu(rs1, rs2 uint32, imm int32) uint32 { return encodeB(imm, rs2, rs1, 0b110, opBranch) }
func bgeu(rs1, rs2 uint32, imm int32) uint32 { return encodeB(imm, rs2, rs1, 0b111, opBranch) }

func jal(rd uint32, imm int32) uint32         { return encodeJ(imm, rd, opJAL) }
func jalr(rd, rs1 uint32, imm int32) uint32   { return encodeI(imm, rs1, 0b000, rd, opJALR) }
func ecall() uint32                           { return encodeI(0, 0, 0, 0, opSystem) }

// register name aliases, matching the standard rv32 ABI names used in
// comments below.
const (
	zero uint32 = 0
	ra   uint32 = 1
	sp   uint32 = 2
	a0   uint32 = 10
	a1   uint32 = 11
	a7   uint32 = 17
	t0   uint32 = 5
	t1   uint32 = 6
	t2   uint32 = 7
	t3   uint32 = 28
	t4   uint32 = 29
	t5   uint32 = 30
	t6   uint32 = 31
	s0   uint32 = 8
	s1   uint32 = 9
	s2   uint32 = 18
	s3   uint32 = 19
	s4   uint32 = 20
)

const (
	ecallPutChar = 1
	ecallExit    = 93
)

// asm is a label-resolving assembler: instructions and labels are
// appended in order, and Bytes() resolves every branch/jump that
// targeted a label into its PC-relative immediate before encoding.
type asm struct {
	words  []uint32
	labels map[string]uint32
	// pending records a branch/jump word index whose immediate still
	// needs patching once its target label is known.
	pending []pendingRef
}

type pendingRef struct {
	index  int
	label  string
	format string // "B" or "J"
	rd     uint32
	rs1    uint32
	rs2    uint32
	funct3 uint32
}

func newAsm() *asm {
	return &asm{labels: map[string]uint32{}}
}

func (a *asm) pc() uint32 { return uint32(len(a.words)) * 4 }

func (a *asm) label(name string) {
	a.labels[name] = a.pc()
}

func (a *asm) emit(word uint32) {
	a.words = append(a.words, word)
}

func (a *asm) jalTo(rd uint32, label string) {
	idx := len(a.words)
	a.words = append(a.words, 0)
	a.pending = append(a.pending, pendingRef{index: idx, label: label, format: "J", rd: rd})
}

func (a *asm) branchTo(funct3 uint32, rs1, rs2 uint32, label string) {
	idx := len(a.words)
	a.words = append(a.words, 0)
	a.pending = append(a.pending, pendingRef{index: idx, label: label, format: "B", rs1: rs1, rs2: rs2, funct3: funct3})
}

// bytes resolves every pending label reference and serializes the
// program to little-endian bytes starting at base.
func (a *asm) bytes(base uint32) []byte {
	for _, p := range a.pending {
		target, ok := a.labels[p.label]
		if !ok {
			panic(fmt.Sprintf("undefined label %q", p.label))
		}
		from := uint32(p.index) * 4
		imm := int32(target) - int32(from)
		switch p.format {
		case "J":
			a.words[p.index] = jal(p.rd, imm)
		case "B":
			a.words[p.index] = encodeB(imm, p.rs2, p.rs1, p.funct3, opBranch)
		}
	}

	out := make([]byte, len(a.words)*4)
	for i, w := range a.words {
		out[i*4] = byte(w)
		out[i*4+1] = byte(w >> 8)
		out[i*4+2] = byte(w >> 16)
		out[i*4+3] = byte(w >> 24)
	}
	return out
}
