package emu

import "io"

// ECALL function numbers recognised by this simulator's single honoured
// environment call, following the conventional a7-selects-function, a0/a1-
// carry-argument ABI shape (register numbers, not symbolic names, since
// this core has no assembler-level register aliasing).
const (
	RegA0 = 10
	RegA1 = 11
	RegA7 = 17

	ECALLPutChar = 1  // a1 holds the byte to emit
	ECALLExit    = 93 // a0 holds the exit code
)

// ECALLOutcome reports what an honoured ECALL requested.
type ECALLOutcome struct {
	Exit     bool
	ExitCode int32
}

// SyscallHandler executes the single honoured ECALL: character output (a7
// == ECALLPutChar, byte in a1) and orderly exit (a7 == ECALLExit, code in
// a0). Any other a7 value is treated as a no-op continuation, matching
// "all other system-level instructions halt the simulation" being handled
// one level up by the pipeline controller (only ECALL/EBREAK reach here;
// all other unrecognised encodings are decode faults).
type SyscallHandler struct {
	stdout io.Writer
}

// NewSyscallHandler creates a handler that writes character output to w.
func NewSyscallHandler(w io.Writer) *SyscallHandler {
	return &SyscallHandler{stdout: w}
}

// Handle executes the ECALL described by the given register values.
func (h *SyscallHandler) Handle(a0, a1, a7 uint32) (ECALLOutcome, error) {
	switch a7 {
	case ECALLPutChar:
		if h.stdout != nil {
			if _, err := h.stdout.Write([]byte{byte(a1)}); err != nil {
				return ECALLOutcome{}, err
			}
		}
		return ECALLOutcome{}, nil
	case ECALLExit:
		return ECALLOutcome{Exit: true, ExitCode: int32(a0)}, nil
	default:
		return ECALLOutcome{}, nil
	}
}
