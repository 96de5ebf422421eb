package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/addressing"
	"github.com/sarchlab/cachesim/mem/trace"
)

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

	return path
}

var _ = Describe("resolveConfig", func() {
	It("should let flags override the config file", func() {
		dir := GinkgoT().TempDir()
		path := writeFile(dir, "cache.yaml",
			"cache_size_exp: 10\nline_size_exp: 4\nassociativity: fa\n")

		cmd := newGeometryCmd()
		Expect(cmd.ParseFlags([]string{
			"--config", path, "--line-size-exp", "2", "--policy", "fifo",
		})).To(Succeed())

		cfg, err := resolveConfig(cmd)

		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.CacheSizeExp).To(Equal(uint(10)))
		Expect(cfg.LineSizeExp).To(Equal(uint(2)))
		Expect(cfg.Associativity).To(Equal("fa"))
		Expect(cfg.Policy).To(Equal("fifo"))
	})

	It("should read the environment", func() {
		GinkgoT().Setenv("CACHESIM_ASSOC", "dm")

		cmd := newGeometryCmd()
		Expect(cmd.ParseFlags(nil)).To(Succeed())

		cfg, err := resolveConfig(cmd)

		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Associativity).To(Equal("dm"))
	})

	It("should ask interactively", func() {
		cmd := newGeometryCmd()
		cmd.SetIn(strings.NewReader("5\n2\nl\ndm\n"))
		cmd.SetOut(&bytes.Buffer{})
		Expect(cmd.ParseFlags([]string{"--interactive"})).To(Succeed())

		cfg, err := resolveConfig(cmd)

		Expect(err).ToNot(HaveOccurred())
		Expect(cfg).To(Equal(config.Config{
			CacheSizeExp:  5,
			LineSizeExp:   2,
			Associativity: "dm",
			Policy:        "l",
		}))
	})
})

var _ = Describe("geometry", func() {
	It("should print the derived shape", func() {
		out, err := execute(newGeometryCmd(),
			"--cache-size-exp", "5", "--line-size-exp", "2", "--assoc", "dm")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(MatchRegexp(`Sets:\s+8`))
		Expect(out).To(MatchRegexp(`Tag bits:\s+27`))
		Expect(out).To(MatchRegexp(`Offset bits:\s+2`))
	})

	It("should reject invalid configurations", func() {
		_, err := execute(newGeometryCmd(),
			"--cache-size-exp", "2", "--line-size-exp", "5")

		Expect(err).To(MatchError(addressing.ErrConfiguration))
	})
})

var _ = Describe("decompose", func() {
	It("should split the direct-mapped example", func() {
		out, err := execute(newDecomposeCmd(), "0x1FFFFF50",
			"--cache-size-exp", "5", "--line-size-exp", "2", "--assoc", "dm")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("tag:     000111111111111111111111010"))
		Expect(out).To(ContainSubstring("set:     100 (4)"))
		Expect(out).To(ContainSubstring("offset:  00 (0)"))
	})

	It("should reject malformed addresses", func() {
		_, err := execute(newDecomposeCmd(), "1FFFFF50")

		Expect(err).To(MatchError(addressing.ErrPrefix))
	})
})

var _ = Describe("run", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should print the summary", func() {
		path := writeFile(dir, "trace.txt",
			"l 0x00000000\ns 0x00000004\n\nl 0x00000000\nl 0x00000008\n")

		out, err := execute(newRunCmd(), path,
			"--cache-size-exp", "3", "--line-size-exp", "2",
			"--assoc", "fa", "--policy", "lru", "--log-level", "warn")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(MatchRegexp(`Accesses:\s+4`))
		Expect(out).To(MatchRegexp(`Hits:\s+1`))
		Expect(out).To(MatchRegexp(`Misses:\s+3`))
		Expect(out).To(MatchRegexp(`Hit rate:\s+25.00%`))
		Expect(out).To(MatchRegexp(`Policy:\s+LRU`))
	})

	It("should report the line of a bad record", func() {
		path := writeFile(dir, "trace.txt", "l 0x00000000\nx 0x00000004\n")

		_, err := execute(newRunCmd(), path, "--log-level", "warn")

		var recordErr *trace.RecordError
		Expect(err).To(BeAssignableToTypeOf(recordErr))
		Expect(err).To(MatchError(trace.ErrUnrecognizedOperation))
		Expect(err.(*trace.RecordError).LineNumber).To(Equal(2))
	})

	It("should fail on a missing trace", func() {
		_, err := execute(newRunCmd(), filepath.Join(dir, "none.txt"))

		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should reject an unknown log level", func() {
		path := writeFile(dir, "trace.txt", "l 0x00000000\n")

		_, err := execute(newRunCmd(), path, "--log-level", "loud")

		Expect(err).To(HaveOccurred())
	})

	It("should record the run and list it", func() {
		path := writeFile(dir, "trace.txt",
			"l 0x00000000\nl 0x00000000\nl 0x00000040\n")
		db := filepath.Join(dir, "rec")

		_, err := execute(newRunCmd(), path,
			"--record-db", db, "--log-level", "warn", "--policy", "fifo")
		Expect(err).ToNot(HaveOccurred())

		out, err := execute(newHistoryCmd(), db+".sqlite3")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("FIFO"))
		Expect(out).To(MatchRegexp(`\s3\s+1\s+33.33%`))
	})

	It("should append later runs to the same recording", func() {
		path := writeFile(dir, "trace.txt",
			"l 0x00000000\nl 0x00000000\nl 0x00000040\n")
		db := filepath.Join(dir, "rec")

		for _, policy := range []string{"lru", "fifo"} {
			_, err := execute(newRunCmd(), path,
				"--record-db", db, "--log-level", "warn", "--policy", policy)
			Expect(err).ToNot(HaveOccurred())
		}

		out, err := execute(newHistoryCmd(), db+".sqlite3")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("LRU"))
		Expect(out).To(ContainSubstring("FIFO"))
		Expect(strings.Count(out, "33.33%")).To(Equal(2))

		out, err = execute(newHistoryCmd(), db+".sqlite3", "--limit", "1")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("(1 of 2 runs)"))
	})

	It("should report an unusable recording path", func() {
		path := writeFile(dir, "trace.txt", "l 0x00000000\n")

		_, err := execute(newRunCmd(), path, "--log-level", "warn",
			"--record-db", filepath.Join(dir, "missing", "rec"))

		Expect(err).To(HaveOccurred())
	})

	It("should serve the monitor while running", func() {
		path := writeFile(dir, "trace.txt", "l 0x00000000\nl 0x00000000\n")

		out, err := execute(newRunCmd(), path, "--monitor")

		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("monitoring simulation with http://"))
		Expect(out).To(MatchRegexp(`Hits:\s+1`))
	})
})
