package emu

import "testing"

func TestRegFileZeroRegister(t *testing.T) {
	rf := NewRegFile()
	rf.WriteReg(0, 42)
	if rf.ReadReg(0) != 0 {
		t.Fatal("register 0 must always read zero")
	}
	rf.WriteReg(5, 7)
	if rf.ReadReg(5) != 7 {
		t.Fatal("register 5 should retain its write")
	}
}

func TestMemoryWordRoundTrip(t *testing.T) {
	m := NewMemory(64)
	if err := m.Write32(0, 0xdeadbeef); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := m.Read32(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("got 0x%x", v)
	}
}

func TestMemoryUnalignedWordFaults(t *testing.T) {
	m := NewMemory(64)
	if _, err := m.Read32(2); err == nil {
		t.Fatal("expected unaligned fault")
	}
	if err := m.Write32(1, 0); err == nil {
		t.Fatal("expected unaligned fault")
	}
}

func TestMemoryUnalignedHalfFaults(t *testing.T) {
	m := NewMemory(64)
	if _, err := m.Read16(1); err == nil {
		t.Fatal("expected unaligned fault")
	}
}

func TestMemoryOutOfBoundsFaults(t *testing.T) {
	m := NewMemory(4)
	if _, err := m.Read32(4); err == nil {
		t.Fatal("expected out of bounds fault")
	}
}

func TestMemoryByteIsUnconstrained(t *testing.T) {
	m := NewMemory(4)
	if err := m.Write8(1, 0xab); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := m.Read8(1)
	if err != nil || v != 0xab {
		t.Fatalf("got %v err=%v", v, err)
	}
}

func TestLoadSegmentGrowsMemory(t *testing.T) {
	m := NewMemory(4)
	if err := m.LoadSegment(8, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("load segment: %v", err)
	}
	v, err := m.Read32(8)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0x04030201 {
		t.Fatalf("got 0x%x", v)
	}
}
