package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every collector is registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordMatch("default", OutcomeOK, 1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "studybuddy_matching_match_requests_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When overriding namespace and subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithPrometheusRegistry(registry),
			)
			manager.RecordRegistration(OutcomeOK)

			Convey("Then names use the overrides", func() {
				n, err := testutil.GatherAndCount(registry, "test_unit_registrations_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When creating twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics on duplicates", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording match requests", func() {
			manager.RecordMatch("default", OutcomeOK, 0.4)
			manager.RecordMatch("default", OutcomeOK, 0.2)
			manager.RecordMatch("custom", OutcomeError, 0.1)

			Convey("Then counters are split by mode and outcome", func() {
				So(testutil.ToFloat64(manager.matchRequests.WithLabelValues("default", OutcomeOK)), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.matchRequests.WithLabelValues("custom", OutcomeError)), ShouldEqual, 1)
			})
		})

		Convey("When updating the pool gauges", func() {
			manager.UpdatePool(10, 6, 4)
			manager.UpdatePool(11, 7, 4)

			Convey("Then the last value wins", func() {
				So(testutil.ToFloat64(manager.poolSize), ShouldEqual, 11)
				So(testutil.ToFloat64(manager.poolLearners), ShouldEqual, 7)
				So(testutil.ToFloat64(manager.poolTutors), ShouldEqual, 4)
			})
		})

		Convey("When recording imports and errors", func() {
			manager.RecordImportRow(OutcomeOK)
			manager.RecordImportRow(OutcomeError)
			manager.RecordImportRow(OutcomeError)
			manager.RecordErrorByComponent("repository", "save")

			Convey("Then the counters reflect each call", func() {
				So(testutil.ToFloat64(manager.importRows.WithLabelValues(OutcomeError)), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.errorsByComponent.WithLabelValues("repository", "save")), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP requests", func() {
			manager.RecordHTTPRequest("/students", "POST", "201", 3)

			Convey("Then the request counter is incremented", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("/students", "POST", "201")), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("Package-level helpers should not panic", func() {
			So(func() {
				RecordMatch("custom", OutcomeOK, 1)
				RecordMatchResults(3)
				RecordRegistration(OutcomeOK)
				RecordImportRow(OutcomeOK)
				UpdatePool(1, 1, 0)
				RecordRepositoryLatency("load", 0.5)
				RecordHTTPRequest("/healthz", "GET", "200", 1)
				RecordErrorByComponent("http", "decode")
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestRegisterRuntimeCollectors(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		Convey("When runtime collectors are registered twice", func() {
			So(RegisterRuntimeCollectors, ShouldNotPanic)
			So(RegisterRuntimeCollectors, ShouldNotPanic)

			Convey("Then go runtime series are exposed", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "go_goroutines" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a configured namespace and subsystem", t, func() {
		Configure(WithNamespace("buddy"), WithSubsystem("api"))
		defer Configure()

		RecordRegistration(OutcomeOK)

		Convey("Then the global registry exposes the renamed series", func() {
			n, err := testutil.GatherAndCount(GetRegistry(), "buddy_api_registrations_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)

			n, err = testutil.GatherAndCount(GetRegistry(), "studybuddy_matching_registrations_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})

		Convey("Then runtime collectors attach to the new registry", func() {
			So(RegisterRuntimeCollectors, ShouldNotPanic)
			n, err := testutil.GatherAndCount(GetRegistry(), "go_goroutines")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})
	})
}
