package field

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reorderer", func() {
	var (
		shape Shape
		truth *Grid
	)

	BeforeEach(func() {
		shape = Shape{5, 4, 8}
		truth = NewGrid(shape)
		for i := range truth.Data {
			truth.Data[i] = float64(i%17) - 8
		}
	})

	DescribeTable("rebuilds the ground-truth shape whenever the row counts add up",
		func(trainEvery int, seed int64) {
			train, test := scatterGrid(truth, trainEvery, seed)
			Expect(train.Len() + test.Len()).To(Equal(shape.Size()))

			rec, err := DefaultReorderer().Reorder(shape, train, test)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Pred.Shape()).To(Equal(shape))
			Expect(rec.Pred.Data).To(Equal(truth.Data))
		},
		Entry("half observed", 2, int64(1)),
		Entry("a third observed", 3, int64(2)),
		Entry("sparse observations", 11, int64(3)),
	)

	It("fails the reshape when a row is missing", func() {
		train, test := scatterGrid(truth, 2, 4)
		test.Coords = test.Coords[1:]
		test.Values = test.Values[1:]

		_, err := DefaultReorderer().Reorder(shape, train, test)
		Expect(err).To(MatchError(ErrShapeMismatch))
	})

	It("never reports sentinel points as observations", func() {
		train, test := scatterGrid(truth, 3, 5)
		rec, err := DefaultReorderer().Reorder(shape, train, test)
		Expect(err).NotTo(HaveOccurred())

		for x := 0; x < shape.NX; x++ {
			for y := 0; y < shape.NY; y++ {
				obs, err := rec.ObservedAt(x, y)
				Expect(err).NotTo(HaveOccurred())
				for _, o := range obs {
					Expect(o.V).NotTo(Equal(Sentinel))
					Expect(o.V).To(Equal(truth.At(x, y, o.T)))
				}
			}
		}
	})

	It("bounds the color scale by the test predictions", func() {
		train, test := scatterGrid(truth, 2, 6)
		train.Values[0] = 1e6

		rec, err := DefaultReorderer().Reorder(shape, train, test)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.PredMax).To(BeNumerically("<", 1e6))
		Expect(rec.PredMin).To(BeNumerically(">=", -8))
	})
})
