package addressing

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DecodeHex", func() {
	It("should expand every digit to four bits", func() {
		bits, err := DecodeHex("0x123456789ABCDeF")

		Expect(err).NotTo(HaveOccurred())
		Expect(bits.Len()).To(Equal(60))
		Expect(bits.String()).To(Equal(
			"000100100011010001010110011110001001101010111100110111101111"))
	})

	It("should follow the nibble table for every digit", func() {
		for i, d := range "0123456789abcdef" {
			bits, err := DecodeHex("0x" + string(d))

			Expect(err).NotTo(HaveOccurred())
			Expect(bits.String()).To(Equal(nibbleTable[i]))

			upper, err := DecodeHex("0x" + strings.ToUpper(string(d)))
			Expect(err).NotTo(HaveOccurred())
			Expect(upper.String()).To(Equal(nibbleTable[i]))
		}
	})

	It("should expose individual bits", func() {
		bits, _ := DecodeHex("0x8")

		Expect(bits.Bit(0)).To(BeTrue())
		Expect(bits.Bit(1)).To(BeFalse())
		Expect(bits.Bit(3)).To(BeFalse())
	})

	It("should keep the length at four bits per digit", func() {
		for n := 1; n <= 20; n++ {
			bits, err := DecodeHex("0x" + strings.Repeat("f", n))

			Expect(err).NotTo(HaveOccurred())
			Expect(bits.Len()).To(Equal(4 * n))
		}
	})

	DescribeTable("should reject malformed input",
		func(text string, kind error) {
			_, err := DecodeHex(text)

			Expect(err).To(MatchError(kind))
		},
		Entry("no prefix", "1fffff50", ErrPrefix),
		Entry("other prefix", "x1fffff50", ErrPrefix),
		Entry("empty", "", ErrPrefix),
		Entry("bad digit", "0x1fffgf50", ErrFormat),
		Entry("no digits", "0x", ErrFormat),
		Entry("non ascii", "0x1fé", ErrFormat),
		Entry("space inside", "0x1f ff", ErrFormat),
	)
})

var _ = Describe("Split", func() {
	It("should split the direct-mapped example", func() {
		g, _ := NewGeometry(5, 2, DirectMapped())
		bits, _ := DecodeHex("0x1FFFFF50")

		Expect(bits.String()).To(Equal("00011111111111111111111101010000"))

		d, err := Split(bits, g)

		Expect(err).NotTo(HaveOccurred())
		Expect(d.TagBinary()).To(Equal("000111111111111111111111010"))
		Expect(d.SetBinary()).To(Equal("100"))
		Expect(d.OffsetBinary()).To(Equal("00"))
		Expect(d.Set).To(Equal(uint32(4)))
	})

	It("should have a zero-width set in a fully-associative cache", func() {
		g, _ := NewGeometry(5, 2, FullyAssociative())
		bits, _ := DecodeHex("0x1FFFFF50")

		d, err := Split(bits, g)

		Expect(err).NotTo(HaveOccurred())
		Expect(d.SetBinary()).To(Equal(""))
		Expect(d.Set).To(Equal(uint32(0)))
		Expect(d.TagBinary()).To(Equal("000111111111111111111111010100"))
		Expect(d.OffsetBinary()).To(Equal("00"))
	})

	It("should require 32 bits", func() {
		g, _ := NewGeometry(5, 2, DirectMapped())
		bits, _ := DecodeHex("0x1FFFFF5")

		_, err := Split(bits, g)

		Expect(err).To(MatchError(ErrLengthMismatch))
	})
})

var _ = Describe("ParseAddress", func() {
	It("should parse 8-digit addresses", func() {
		addr, err := ParseAddress("0x1fffff50")

		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal(Address(0x1fffff50)))
		Expect(addr.String()).To(Equal("0x1fffff50"))
	})

	It("should reject longer addresses", func() {
		_, err := ParseAddress("0x001fffff50")

		Expect(err).To(MatchError(ErrLengthMismatch))
	})
})
