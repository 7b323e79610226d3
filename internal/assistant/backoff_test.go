package assistant

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("retryBackoff", func() {
	DescribeTable("doubles per attempt up to the cap",
		func(base time.Duration, attempt int, expected time.Duration) {
			Expect(retryBackoff(base, attempt)).To(Equal(expected))
		},
		Entry("first retry uses the base", 500*time.Millisecond, 1, 500*time.Millisecond),
		Entry("second retry doubles", 500*time.Millisecond, 2, time.Second),
		Entry("fourth retry", 500*time.Millisecond, 4, 4*time.Second),
		Entry("capped", 500*time.Millisecond, 10, maxRetryBackoff),
		Entry("huge attempt count stays capped", 500*time.Millisecond, 200, maxRetryBackoff),
		Entry("large base is capped", time.Hour, 1, maxRetryBackoff),
		Entry("zero base", time.Duration(0), 50, time.Duration(0)),
		Entry("negative base", -time.Second, 3, time.Duration(0)),
	)
})
