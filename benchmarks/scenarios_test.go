package benchmarks

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/archsim/rv32ooo/loader"
	"github.com/archsim/rv32ooo/timing/core"
	"github.com/archsim/rv32ooo/timing/latency"
	"github.com/archsim/rv32ooo/timing/pipeline"
)

func TestBenchmarks(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "end-to-end scenarios")
}

// toLoaderProgram turns an assembled Program into the loader.Program
// shape core.NewCore expects, standing in for an ELF file on disk.
func toLoaderProgram(p Program) *loader.Program {
	segs := []loader.Segment{{VirtAddr: p.CodeAt, Data: p.Code, MemSize: uint32(len(p.Code))}}
	if len(p.Data) > 0 {
		segs = append(segs, loader.Segment{VirtAddr: p.DataAt, Data: p.Data, MemSize: uint32(len(p.Data))})
	}
	return &loader.Program{EntryPoint: p.EntryPC, InitialSP: p.StackTop, Segments: segs}
}

func runProgram(p Program, cfg *pipeline.CoreConfig) *core.Core {
	lat := latency.DefaultTimingConfig()
	gomega.Expect(cfg.Validate()).To(gomega.Succeed())
	c, err := core.NewCore(toLoaderProgram(p), cfg, lat)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	c.Run()
	return c
}

var _ = ginkgo.Describe("iterative fibonacci", func() {
	ginkgo.It("commits fib(42) into a0 and exits cleanly", func() {
		c := runProgram(IterativeFibonacci(), pipeline.DefaultCoreConfig())
		gomega.Expect(c.HaltCause()).To(gomega.Equal(pipeline.HaltExitECALL))
		gomega.Expect(c.ExitCode()).To(gomega.Equal(int32(267914296)))
	})
})

var _ = ginkgo.Describe("recursive fibonacci", func() {
	ginkgo.It("commits fib(9) through nested calls", func() {
		c := runProgram(RecursiveFibonacci(), pipeline.DefaultCoreConfig())
		gomega.Expect(c.HaltCause()).To(gomega.Equal(pipeline.HaltExitECALL))
		gomega.Expect(c.ExitCode()).To(gomega.Equal(int32(34)))
	})

	ginkgo.It("mispredicts less often as the predictor gets smarter", func() {
		prog := RecursiveFibonacci()

		runWithMode := func(mode string) uint64 {
			cfg := pipeline.DefaultCoreConfig()
			cfg.BranchPrediction = mode
			c := runProgram(prog, cfg)
			gomega.Expect(c.ExitCode()).To(gomega.Equal(int32(34)))
			return c.Stats().Mispredictions
		}

		offMiss := runWithMode("off")
		twobitMiss := runWithMode("twobit")
		twolevelMiss := runWithMode("twolevel")

		gomega.Expect(twobitMiss).To(gomega.BeNumerically("<", offMiss))
		// twolevel correlates on global history, which only pays off when a
		// branch's outcome actually depends on the path that reached it;
		// fib(9)'s recursive base-case branch does exhibit that correlation,
		// but nothing in the predictor's code guarantees strict improvement
		// over twobit for an arbitrary call pattern, so this is left at <=
		// rather than asserting a strict inequality that isn't provable from
		// the implementation alone (see DESIGN.md).
		gomega.Expect(twolevelMiss).To(gomega.BeNumerically("<=", twobitMiss))
	})
})

var _ = ginkgo.Describe("sorting daybreak", func() {
	expected := []byte("aabdekry")

	ginkgo.It("bubble sort produces the sorted bytes", func() {
		p := BubbleSort()
		c := runProgram(p, pipeline.DefaultCoreConfig())
		gomega.Expect(c.HaltCause()).To(gomega.Equal(pipeline.HaltExitECALL))

		got := make([]byte, len(expected))
		for i := range got {
			b, err := c.Memory().Read8(p.DataAt + uint32(i))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			got[i] = b
		}
		gomega.Expect(got).To(gomega.Equal(expected))
	})

	ginkgo.It("quick sort produces the same sorted bytes", func() {
		p := QuickSort()
		c := runProgram(p, pipeline.DefaultCoreConfig())
		gomega.Expect(c.HaltCause()).To(gomega.Equal(pipeline.HaltExitECALL))

		got := make([]byte, len(expected))
		for i := range got {
			b, err := c.Memory().Read8(p.DataAt + uint32(i))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			got[i] = b
		}
		gomega.Expect(got).To(gomega.Equal(expected))
	})
})

var _ = ginkgo.Describe("hello world", func() {
	ginkgo.It("emits the 14 bytes of the greeting in order, one ECALL per character", func() {
		var out []byte
		sink := &sliceWriter{buf: &out}

		lat := latency.DefaultTimingConfig()
		cfg := pipeline.DefaultCoreConfig()
		p := HelloWorld()
		gomega.Expect(cfg.Validate()).To(gomega.Succeed())

		c, err := core.NewCore(toLoaderProgram(p), cfg, lat, pipeline.WithStdout(sink))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		c.Run()

		gomega.Expect(c.HaltCause()).To(gomega.Equal(pipeline.HaltExitECALL))
		gomega.Expect(string(out)).To(gomega.Equal("hello\n  world!"))
		gomega.Expect(out).To(gomega.HaveLen(14))
	})
})

var _ = ginkgo.Describe("config sweep equivalence", func() {
	ginkgo.It("reaches the same answer faster under a wider configuration", func() {
		prog := IterativeFibonacci()

		scalar := pipeline.DefaultCoreConfig()
		scalar.ALUUnits, scalar.BLUUnits, scalar.MCUUnits = 1, 1, 1
		scalar.RSVCapacity, scalar.ROBCapacity = 16, 32
		scalar.NWay, scalar.IssueLimit = 1, 1

		wide := pipeline.DefaultCoreConfig()
		wide.ALUUnits, wide.BLUUnits, wide.MCUUnits = 4, 1, 4
		wide.RSVCapacity, wide.ROBCapacity = 32, 64
		wide.NWay, wide.IssueLimit = 4, 6

		scalarCore := runProgram(prog, scalar)
		wideCore := runProgram(prog, wide)

		gomega.Expect(scalarCore.ExitCode()).To(gomega.Equal(int32(267914296)))
		gomega.Expect(wideCore.ExitCode()).To(gomega.Equal(scalarCore.ExitCode()))
		gomega.Expect(wideCore.Stats().Cycles).To(gomega.BeNumerically("<", scalarCore.Stats().Cycles))
	})
})

// sliceWriter is a minimal io.Writer collecting written bytes, standing
// in for os.Stdout in tests that need to inspect emitted output.
type sliceWriter struct {
	buf *[]byte
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
