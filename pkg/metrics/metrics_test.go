package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yoshikawa-river/keiba-features/pkg/metrics"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg), metrics.WithNamespace("test"))
		So(m, ShouldNotBeNil)

		Convey("Then collectors should be gatherable", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Histograms/counters appear only after first observation for
			// some collector types; gathering must never error either way.
			So(families, ShouldNotBeNil)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline activity", func() {
			Convey("Then helpers should not panic", func() {
				So(func() {
					metrics.RecordRunStart()
					metrics.RecordRows(42)
					metrics.RecordRunDuration(0.8)
					metrics.RecordMergeDuration(0.01)
					metrics.RecordVocabularySize(180)
					metrics.RecordExtractorDuration("performance", 0.2)
					metrics.RecordExtractorFeatures("performance", 40)
					metrics.RecordExtractorFailure("relative")
					metrics.RecordLeakageViolation()
					metrics.RecordHistoryFetch(0.003, 120)
					metrics.RecordRunDegraded()
					metrics.RecordRunFailed()
				}, ShouldNotPanic)
			})
		})

		Convey("Then the shared registry should be reachable", func() {
			So(metrics.Registry(), ShouldNotBeNil)
			_, err := metrics.Registry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
