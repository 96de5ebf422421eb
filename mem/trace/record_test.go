package trace

import (
	"github.com/sarchlab/cachesim/mem/addressing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseRecord", func() {
	DescribeTable("should accept valid records",
		func(text string, op Operation, addr addressing.Address) {
			r, err := ParseRecord(RawRecord{LineNumber: 1, Text: text})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Op).To(Equal(op))
			Expect(r.Address).To(Equal(addr))
		},
		Entry("load", "l 0x1fffff50", Load, addressing.Address(0x1fffff50)),
		Entry("store", "s 0x1fffff50", Store, addressing.Address(0x1fffff50)),
		Entry("upper case", "L 0X1FFFFF50", Load, addressing.Address(0x1fffff50)),
		Entry("padded", "  s 0x00000004  ", Store, addressing.Address(4)),
		Entry("size field", "l 0x1fffff50 1", Load, addressing.Address(0x1fffff50)),
	)

	DescribeTable("should reject invalid records",
		func(text string, kind error) {
			_, err := ParseRecord(RawRecord{LineNumber: 1, Text: text})

			Expect(err).To(MatchError(kind))
		},
		Entry("bad op", "x 0x1fffff50", ErrUnrecognizedOperation),
		Entry("word op", "load 0x1fffff50", ErrUnrecognizedOperation),
		Entry("op checked first", "m zz", ErrUnrecognizedOperation),
		Entry("missing address", "l", ErrMalformedRecord),
		Entry("empty", "   ", ErrMalformedRecord),
		Entry("no prefix", "l 1fffff50", addressing.ErrPrefix),
		Entry("bad digit", "l 0x1ffzff50", addressing.ErrFormat),
		Entry("short", "l 0x1ff", addressing.ErrLengthMismatch),
		Entry("long", "l 0x1fffff5000", addressing.ErrLengthMismatch),
	)
})

var _ = Describe("RecordError", func() {
	It("should name the line and unwrap to the kind", func() {
		err := &RecordError{
			LineNumber: 12,
			Text:       "q 0x0",
			Err:        ErrUnrecognizedOperation,
		}

		Expect(err.Error()).To(ContainSubstring("line 12"))
		Expect(err.Error()).To(ContainSubstring("q 0x0"))
		Expect(err).To(MatchError(ErrUnrecognizedOperation))
	})
})
