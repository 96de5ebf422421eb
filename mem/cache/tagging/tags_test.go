package tagging

import (
	"github.com/sarchlab/cachesim/mem/addressing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TagArray", func() {
	var (
		tags *TagArray
	)

	BeforeEach(func() {
		g, err := addressing.NewGeometry(6, 2, addressing.SetAssociative(1))
		Expect(err).NotTo(HaveOccurred())

		tags = NewTagArray(g)
	})

	It("should create sets lazily", func() {
		_, ok := tags.PeekSet(3)
		Expect(ok).To(BeFalse())

		set := tags.GetSet(3)

		Expect(set.Cap()).To(Equal(2))
		Expect(tags.NumReferencedSets()).To(Equal(1))

		again, ok := tags.PeekSet(3)
		Expect(ok).To(BeTrue())
		Expect(again).To(BeIdenticalTo(set))
	})

	It("should not count a set twice", func() {
		tags.GetSet(1)
		tags.GetSet(1)
		tags.GetSet(2)

		Expect(tags.NumReferencedSets()).To(Equal(2))
	})

	It("should panic on out of range set indices", func() {
		Expect(func() { tags.GetSet(8) }).To(Panic())
		Expect(func() { tags.PeekSet(8) }).To(Panic())
	})

	It("should drop every set on reset", func() {
		tags.GetSet(0).Insert(Line{Tag: 1})

		tags.Reset()

		Expect(tags.NumReferencedSets()).To(Equal(0))
		_, ok := tags.PeekSet(0)
		Expect(ok).To(BeFalse())
	})
})
