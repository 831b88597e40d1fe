package insts

import "testing"

func encodeR(funct7 uint32, rs2, rs1 uint8, funct3 uint32, rd uint8, opcode uint32) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeI(imm int32, rs1 uint8, funct3 uint32, rd uint8, opcode uint32) uint32 {
	return uint32(imm)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeS(imm int32, rs2, rs1 uint8, funct3 uint32, opcode uint32) uint32 {
	u := uint32(imm)
	return (u>>5)&0x7f<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

func encodeU(imm int32, rd uint8, opcode uint32) uint32 {
	return uint32(imm)&0xfffff000 | uint32(rd)<<7 | opcode
}

func encodeB(imm int32, rs2, rs1 uint8, funct3 uint32) uint32 {
	u := uint32(imm)
	b12 := (u >> 12) & 0x1
	b11 := (u >> 11) & 0x1
	b10_5 := (u >> 5) & 0x3f
	b4_1 := (u >> 1) & 0xf
	return b12<<31 | b10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | b4_1<<8 | b11<<7 | 0x63
}

func encodeJ(imm int32, rd uint8) uint32 {
	u := uint32(imm)
	b20 := (u >> 20) & 0x1
	b19_12 := (u >> 12) & 0xff
	b11 := (u >> 11) & 0x1
	b10_1 := (u >> 1) & 0x3ff
	return b20<<31 | b10_1<<21 | b11<<20 | b19_12<<12 | uint32(rd)<<7 | 0x6f
}

func TestDecodeRType(t *testing.T) {
	d := NewDecoder()
	word := encodeR(0, 3, 1, 0b000, 2, 0x33) // ADD x2, x1, x3
	inst, err := d.Decode(word, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Op != OpADD || inst.Rd != 2 || inst.Rs1 != 1 || inst.Rs2 != 3 {
		t.Fatalf("bad decode: %+v", inst)
	}
}

func TestDecodeSUBvsADD(t *testing.T) {
	d := NewDecoder()
	word := encodeR(0b0100000, 3, 1, 0b000, 2, 0x33)
	inst, err := d.Decode(word, 0)
	if err != nil || inst.Op != OpSUB {
		t.Fatalf("expected SUB, got %+v err=%v", inst, err)
	}
}

func TestDecodeMExtension(t *testing.T) {
	d := NewDecoder()
	word := encodeR(0b0000001, 3, 1, 0b100, 2, 0x33) // DIV
	inst, err := d.Decode(word, 0)
	if err != nil || inst.Op != OpDIV {
		t.Fatalf("expected DIV, got %+v err=%v", inst, err)
	}
}

func TestDecodeAddiNegativeImm(t *testing.T) {
	d := NewDecoder()
	word := encodeI(-1, 1, 0b000, 2, 0x13)
	inst, err := d.Decode(word, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Op != OpADDI || inst.Imm != -1 {
		t.Fatalf("bad decode: %+v", inst)
	}
}

func TestDecodeStore(t *testing.T) {
	d := NewDecoder()
	word := encodeS(-4, 5, 1, 0b010, 0x23) // SW x5, -4(x1)
	inst, err := d.Decode(word, 0)
	if err != nil || inst.Op != OpSW || inst.Imm != -4 || inst.Rs1 != 1 || inst.Rs2 != 5 {
		t.Fatalf("bad decode: %+v err=%v", inst, err)
	}
}

func TestDecodeLUI(t *testing.T) {
	d := NewDecoder()
	word := encodeU(0x12345000, 1, 0x37)
	inst, err := d.Decode(word, 0)
	if err != nil || inst.Op != OpLUI || inst.Imm != 0x12345000 {
		t.Fatalf("bad decode: %+v err=%v", inst, err)
	}
}

func TestDecodeBranchNegativeOffset(t *testing.T) {
	d := NewDecoder()
	word := encodeB(-8, 2, 1, 0b000) // BEQ x1, x2, -8
	inst, err := d.Decode(word, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Op != OpBEQ || inst.Imm != -8 || inst.Target != 92 {
		t.Fatalf("bad decode: %+v", inst)
	}
}

func TestDecodeJAL(t *testing.T) {
	d := NewDecoder()
	word := encodeJ(16, 1)
	inst, err := d.Decode(word, 100)
	if err != nil || inst.Op != OpJAL || inst.Target != 116 || !inst.IsJump {
		t.Fatalf("bad decode: %+v err=%v", inst, err)
	}
}

func TestDecodeECALLAndEBREAK(t *testing.T) {
	d := NewDecoder()
	ecall, err := d.Decode(0x00000073, 0)
	if err != nil || ecall.Op != OpECALL {
		t.Fatalf("expected ECALL, got %+v err=%v", ecall, err)
	}
	ebreak, err := d.Decode(0x00100073, 0)
	if err != nil || ebreak.Op != OpEBREAK {
		t.Fatalf("expected EBREAK, got %+v err=%v", ebreak, err)
	}
}

func TestDecodeFenceIsNop(t *testing.T) {
	d := NewDecoder()
	inst, err := d.Decode(0x0000000f, 0)
	if err != nil || inst.Op != OpFENCE {
		t.Fatalf("expected FENCE, got %+v err=%v", inst, err)
	}
}

func TestDecodeUnknownOpcodeFaults(t *testing.T) {
	d := NewDecoder()
	_, err := d.Decode(0x00000001, 4)
	if err == nil {
		t.Fatal("expected a decode fault")
	}
	var df *DecodeFault
	if !asDecodeFault(err, &df) {
		t.Fatalf("expected *DecodeFault, got %T", err)
	}
	if df.PC != 4 {
		t.Fatalf("expected PC 4, got %d", df.PC)
	}
}

func asDecodeFault(err error, out **DecodeFault) bool {
	df, ok := err.(*DecodeFault)
	if ok {
		*out = df
	}
	return ok
}
