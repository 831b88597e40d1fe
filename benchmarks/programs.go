package benchmarks

// Program bundles an assembled instruction image with the data segments
// it expects pre-loaded before execution and the address execution
// should begin at.
type Program struct {
	Name    string
	Code    []byte
	CodeAt  uint32
	Data    []byte
	DataAt  uint32
	EntryPC uint32
	// StackTop is the value x2 should hold before the first cycle.
	StackTop uint32
}

const (
	codeBase  uint32 = 0x0000
	dataBase  uint32 = 0x0400
	stackTop  uint32 = 0x2000
	memExtent uint32 = 0x3000
)

// MemSize is the flat memory image size every scenario program is built
// to run inside: large enough for code, data and the downward-growing
// stack with headroom to spare.
const MemSize = memExtent

// IterativeFibonacci assembles a loop computing fib(42) into x5 (t0),
// exiting through ECALL with the result in a0. fib(0)=0, fib(1)=1.
func IterativeFibonacci() Program {
	a := newAsm()
	a.emit(addi(t0, zero, 0))  // a = fib(0)
	a.emit(addi(t1, zero, 1))  // b = fib(1)
	a.emit(addi(t2, zero, 0))  // i = 0
	a.emit(addi(t3, zero, 42)) // limit
	a.label("loop")
	a.branchTo(0b101, t2, t3, "done") // bge i, limit, done
	a.emit(add(t4, t0, t1))           // temp = a+b
	a.emit(addi(t0, t1, 0))           // a = b
	a.emit(addi(t1, t4, 0))           // b = temp
	a.emit(addi(t2, t2, 1))           // i++
	a.jalTo(zero, "loop")
	a.label("done")
	a.emit(addi(a0, t0, 0))
	a.emit(addi(a7, zero, ecallExit))
	a.emit(ecall())

	return Program{
		Name:     "iterative-fibonacci-42",
		Code:     a.bytes(codeBase),
		CodeAt:   codeBase,
		EntryPC:  codeBase,
		StackTop: stackTop,
	}
}

// RecursiveFibonacci assembles a recursive fib(9) using a conventional
// stack-frame call sequence, exercising the branch predictor across many
// independent invocations of the same conditional branch.
func RecursiveFibonacci() Program {
	a := newAsm()
	// main: a0 = 9; call fib; exit with fib(9) as the exit code.
	a.emit(lui(sp, int32(stackTop)))
	a.emit(addi(a0, zero, 9))
	a.jalTo(ra, "fib")
	a.emit(addi(a7, zero, ecallExit))
	a.emit(ecall())

	// fib(n): if n<2 return n; else return fib(n-1)+fib(n-2).
	a.label("fib")
	a.emit(addi(sp, sp, -16))
	a.emit(sw(ra, sp, 12))
	a.emit(sw(s0, sp, 8))
	a.emit(sw(s1, sp, 4))
	a.emit(addi(s0, a0, 0)) // s0 = n
	a.emit(addi(t0, zero, 2))
	a.branchTo(0b100, s0, t0, "base") // blt n, 2, base
	a.emit(addi(a0, s0, -1))
	a.jalTo(ra, "fib")
	a.emit(addi(s1, a0, 0)) // s1 = fib(n-1)
	a.emit(addi(a0, s0, -2))
	a.jalTo(ra, "fib")
	a.emit(add(a0, s1, a0)) // a0 = fib(n-1) + fib(n-2)
	a.jalTo(zero, "fibret")
	a.label("base")
	a.emit(addi(a0, s0, 0))
	a.label("fibret")
	a.emit(lw(s1, sp, 4))
	a.emit(lw(s0, sp, 8))
	a.emit(lw(ra, sp, 12))
	a.emit(addi(sp, sp, 16))
	a.emit(jalr(zero, ra, 0))

	return Program{
		Name:     "recursive-fibonacci-9",
		Code:     a.bytes(codeBase),
		CodeAt:   codeBase,
		EntryPC:  codeBase,
		StackTop: stackTop,
	}
}

// sortInput is the shared byte buffer both sort scenarios operate on.
var sortInput = []byte("daybreak")

// BubbleSort assembles an unoptimized bubble sort (len-1 = 7 passes) over
// an 8-byte buffer loaded at dataBase.
func BubbleSort() Program {
	a := newAsm()
	a.emit(addi(t1, zero, int32(len(sortInput)-1))) // outer limit
	a.emit(addi(t0, zero, 0))                       // i = 0
	a.label("outer")
	a.branchTo(0b101, t0, t1, "done") // bge i, limit, done
	a.emit(addi(t2, zero, 0))         // j = 0
	a.emit(addi(t3, zero, int32(len(sortInput)-1)))
	a.label("inner")
	a.branchTo(0b101, t2, t3, "outerEnd") // bge j, limit, outerEnd
	a.emit(addi(t6, zero, int32(dataBase)))
	a.emit(add(t4, t6, t2))  // addr(j)
	a.emit(lbu(t5, t4, 0))   // buf[j]
	a.emit(addi(a1, t4, 1))  // addr(j+1)
	a.emit(lbu(a0, a1, 0))   // buf[j+1]
	a.branchTo(0b100, a0, t5, "swap") // blt buf[j+1], buf[j], swap
	a.jalTo(zero, "next")
	a.label("swap")
	a.emit(sb(a0, t4, 0)) // buf[j] = buf[j+1]
	a.emit(sb(t5, a1, 0)) // buf[j+1] = buf[j]
	a.label("next")
	a.emit(addi(t2, t2, 1))
	a.jalTo(zero, "inner")
	a.label("outerEnd")
	a.emit(addi(t0, t0, 1))
	a.jalTo(zero, "outer")
	a.label("done")
	a.emit(addi(a0, zero, 0))
	a.emit(addi(a7, zero, ecallExit))
	a.emit(ecall())

	return Program{
		Name:     "bubble-sort-daybreak",
		Code:     a.bytes(codeBase),
		CodeAt:   codeBase,
		Data:     append([]byte(nil), sortInput...),
		DataAt:   dataBase,
		EntryPC:  codeBase,
		StackTop: stackTop,
	}
}

// QuickSort assembles a recursive Lomuto-partition quicksort over the
// same 8-byte buffer, exercising a second recursive call pattern (two
// calls per frame, 32-byte stack frames) and a second independent
// verification of the sort result.
func QuickSort() Program {
	n := len(sortInput)
	a := newAsm()
	a.emit(lui(sp, int32(stackTop)))
	a.emit(addi(a0, zero, 0))
	a.emit(addi(a1, zero, int32(n-1)))
	a.jalTo(ra, "qsort")
	a.emit(addi(a0, zero, 0))
	a.emit(addi(a7, zero, ecallExit))
	a.emit(ecall())

	a.label("qsort")
	a.emit(addi(sp, sp, -32))
	a.emit(sw(ra, sp, 28))
	a.emit(sw(s0, sp, 24))
	a.emit(sw(s1, sp, 20))
	a.emit(sw(s2, sp, 16))
	a.emit(sw(s3, sp, 12))
	a.emit(sw(s4, sp, 8))
	a.emit(addi(s0, a0, 0)) // lo
	a.emit(addi(s1, a1, 0)) // hi
	a.branchTo(0b101, s0, s1, "qret") // bge lo, hi, qret

	a.emit(addi(t6, zero, int32(dataBase))) // base
	a.emit(add(t4, t6, s1))                 // addr(hi)
	a.emit(lbu(t0, t4, 0))                  // pivot = arr[hi]
	a.emit(addi(s3, s0, -1))                // i = lo-1
	a.emit(addi(s4, s0, 0))                 // j = lo
	a.label("partloop")
	a.branchTo(0b101, s4, s1, "partdone") // bge j, hi, partdone
	a.emit(add(t2, t6, s4))               // addr(j)
	a.emit(lbu(t1, t2, 0))                // arr[j]
	a.branchTo(0b100, t0, t1, "skip")     // blt pivot, arr[j], skip
	a.emit(addi(s3, s3, 1))               // i++
	a.emit(add(t3, t6, s3))               // addr(i)
	a.emit(lbu(t5, t3, 0))                // arr[i]
	a.emit(sb(t1, t3, 0))                 // arr[i] = arr[j]
	a.emit(sb(t5, t2, 0))                 // arr[j] = old arr[i]
	a.label("skip")
	a.emit(addi(s4, s4, 1))
	a.jalTo(zero, "partloop")
	a.label("partdone")
	a.emit(addi(s3, s3, 1))  // p = i+1
	a.emit(add(t3, t6, s3))  // addr(p)
	a.emit(lbu(t5, t3, 0))   // arr[p]
	a.emit(sb(t0, t3, 0))    // arr[p] = pivot
	a.emit(sb(t5, t4, 0))    // arr[hi] = old arr[p]
	a.emit(addi(s2, s3, 0))  // p

	a.emit(addi(a0, s0, 0))
	a.emit(addi(a1, s2, -1))
	a.jalTo(ra, "qsort")
	a.emit(addi(a0, s2, 1))
	a.emit(addi(a1, s1, 0))
	a.jalTo(ra, "qsort")

	a.label("qret")
	a.emit(lw(s4, sp, 8))
	a.emit(lw(s3, sp, 12))
	a.emit(lw(s2, sp, 16))
	a.emit(lw(s1, sp, 20))
	a.emit(lw(s0, sp, 24))
	a.emit(lw(ra, sp, 28))
	a.emit(addi(sp, sp, 32))
	a.emit(jalr(zero, ra, 0))

	return Program{
		Name:     "quick-sort-daybreak",
		Code:     a.bytes(codeBase),
		CodeAt:   codeBase,
		Data:     append([]byte(nil), sortInput...),
		DataAt:   dataBase,
		EntryPC:  codeBase,
		StackTop: stackTop,
	}
}

// HelloWorld assembles a loop that emits the 14 bytes of "hello\n  world!"
// one character at a time through the ECALLPutChar environment call.
func HelloWorld() Program {
	message := []byte("hello\n  world!")

	a := newAsm()
	a.emit(addi(s0, zero, int32(dataBase)))
	a.emit(addi(s1, zero, int32(len(message))))
	a.emit(addi(s2, zero, 0))
	a.label("loop")
	a.branchTo(0b101, s2, s1, "done") // bge i, len, done
	a.emit(add(t0, s0, s2))
	a.emit(lbu(a1, t0, 0))
	a.emit(addi(a7, zero, ecallPutChar))
	a.emit(ecall())
	a.emit(addi(s2, s2, 1))
	a.jalTo(zero, "loop")
	a.label("done")
	a.emit(addi(a0, zero, 0))
	a.emit(addi(a7, zero, ecallExit))
	a.emit(ecall())

	return Program{
		Name:     "hello-world",
		Code:     a.bytes(codeBase),
		CodeAt:   codeBase,
		Data:     message,
		DataAt:   dataBase,
		EntryPC:  codeBase,
		StackTop: stackTop,
	}
}
