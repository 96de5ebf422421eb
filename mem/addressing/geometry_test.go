package addressing

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Geometry", func() {
	It("should derive a direct-mapped layout", func() {
		g, err := NewGeometry(5, 2, DirectMapped())

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumLines()).To(Equal(8))
		Expect(g.LinesPerSet()).To(Equal(1))
		Expect(g.NumSets()).To(Equal(8))
		Expect(g.SetBits()).To(Equal(uint(3)))
		Expect(g.OffsetBits()).To(Equal(uint(2)))
		Expect(g.TagBits()).To(Equal(uint(27)))
	})

	It("should derive a fully-associative layout", func() {
		g, err := NewGeometry(5, 2, FullyAssociative())

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumSets()).To(Equal(1))
		Expect(g.LinesPerSet()).To(Equal(8))
		Expect(g.SetBits()).To(Equal(uint(0)))
		Expect(g.TagBits()).To(Equal(uint(30)))
	})

	It("should derive a set-associative layout", func() {
		g, err := NewGeometry(10, 4, SetAssociative(2))

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumLines()).To(Equal(64))
		Expect(g.LinesPerSet()).To(Equal(4))
		Expect(g.NumSets()).To(Equal(16))
		Expect(g.SetBits()).To(Equal(uint(4)))
		Expect(g.TagBits()).To(Equal(uint(24)))
	})

	It("should accept a cache of a single line", func() {
		g, err := NewGeometry(3, 3, DirectMapped())

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumSets()).To(Equal(1))
		Expect(g.LinesPerSet()).To(Equal(1))
	})

	DescribeTable("should reject invalid shapes",
		func(cacheExp, lineExp uint, assoc Associativity) {
			_, err := NewGeometry(cacheExp, lineExp, assoc)

			Expect(err).To(MatchError(ErrConfiguration))
		},
		Entry("line bigger than cache", uint(2), uint(5), DirectMapped()),
		Entry("too many ways", uint(5), uint(2), SetAssociative(4)),
		Entry("line wider than address", uint(40), uint(33), DirectMapped()),
		Entry("too many lines", uint(30), uint(2), DirectMapped()),
		Entry("zero associativity", uint(5), uint(2), Associativity{}),
	)

	It("should always use exactly 32 bits", func() {
		for c := uint(0); c <= 26; c++ {
			for l := uint(0); l <= c; l++ {
				for _, assoc := range []Associativity{
					FullyAssociative(), DirectMapped(),
					SetAssociative(1), SetAssociative(2),
					SetAssociative(3), SetAssociative(4),
				} {
					g, err := NewGeometry(c, l, assoc)
					if err != nil {
						continue
					}

					Expect(g.TagBits() + g.SetBits() + g.OffsetBits()).
						To(Equal(uint(AddressWidth)))
					Expect(g.NumSets() * g.LinesPerSet()).
						To(Equal(g.NumLines()))
				}
			}
		}
	})

	It("should reconstruct every address from its fields", func() {
		rng := rand.New(rand.NewSource(1))
		geometries := []Geometry{}

		for _, assoc := range []Associativity{
			FullyAssociative(), DirectMapped(), SetAssociative(2),
		} {
			g, err := NewGeometry(12, 4, assoc)
			Expect(err).NotTo(HaveOccurred())
			geometries = append(geometries, g)
		}

		for i := 0; i < 1000; i++ {
			addr := Address(rng.Uint32())
			for _, g := range geometries {
				d := g.Decompose(addr)

				Expect(d.Address()).To(Equal(addr))
				Expect(d.TagBinary() + d.SetBinary() + d.OffsetBinary()).
					To(HaveLen(AddressWidth))
			}
		}
	})

	It("should describe itself", func() {
		g, _ := NewGeometry(5, 2, SetAssociative(1))

		Expect(g.String()).To(ContainSubstring("2-way set-associative"))
		Expect(g.String()).To(ContainSubstring("4 sets x 2 lines"))
	})
})

var _ = Describe("Geometry.Compose", func() {
	It("should invert Decompose", func() {
		g, _ := NewGeometry(5, 2, DirectMapped())
		d := g.Decompose(0x1fffff50)

		Expect(g.Compose(d.Tag, d.Set, d.Offset)).To(Equal(Address(0x1fffff50)))
		Expect(g.Compose(d.Tag, d.Set, 0)).To(Equal(Address(0x1fffff50)))
		Expect(g.Compose(d.Tag, d.Set, 3)).To(Equal(Address(0x1fffff53)))
	})
})
