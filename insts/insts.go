// Package insts provides rv32im instruction definitions and decoding.
//
// A 32-bit instruction word is decoded once into an Instruction value; the
// rest of the simulator never re-examines the raw bit pattern. Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(word, pc)
package insts
