package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sync"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors should be registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordFetch(OutcomeSuccess, 12)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_sync_fetches_total"], ShouldBeTrue)
				So(names["test_sync_fetch_latency_milliseconds"], ShouldBeTrue)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))
			manager.RecordFetch(OutcomeTimeout, 5)

			Convey("Then nothing should be counted", func() {
				So(testutil.ToFloat64(manager.fetches.WithLabelValues(OutcomeTimeout)), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording fetch outcomes", func() {
			before := testutil.ToFloat64(globalManager.fetches.WithLabelValues(OutcomeNoMatch))
			RecordFetch(OutcomeNoMatch, 40)

			Convey("Then the labelled counter should move", func() {
				So(testutil.ToFloat64(globalManager.fetches.WithLabelValues(OutcomeNoMatch)), ShouldEqual, before+1)
			})
		})

		Convey("When moving the manual override gauge", func() {
			AddManualOverrides(1)
			AddManualOverrides(1)
			AddManualOverrides(-2)

			Convey("Then it should net out", func() {
				So(testutil.ToFloat64(globalManager.manualOverrides), ShouldEqual, 0)
			})
		})

		Convey("Then the remaining recorders should not panic", func() {
			So(func() {
				RecordPollSkipped()
				RecordSnapshotApplied()
				RecordSnapshotDiscarded()
				UpdateActivePools(3)
				UpdateLastSync("pool-1", 1700000000)
				RecordLeaderChange()
				RecordAnnouncement("leader.changed")
				RecordAnnouncementError()
				RecordRefreshRejected()
				UpdateQueueSize(4)
				RecordQueueDropped()
				RecordHTTPRequest("leader", "GET", "200")
				RecordHTTPRequestDuration("leader", "GET", "200", 1.5)
				RecordErrorByComponent("feed", "timeout")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
