// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed metrics
	feedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_feed_requests_total",
		Help: "Feed assemblies by outcome",
	}, []string{"outcome"}) // outcome=ok|degraded

	feedAssembleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bardisplay_feed_assemble_duration_seconds",
		Help:    "Time spent assembling one feed response",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	feedEligibleFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bardisplay_feed_eligible_files",
		Help: "Number of files eligible for display in the last feed",
	})

	catalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bardisplay_catalog_items",
		Help: "Number of displayable files in the reconciled catalog (last feed)",
	})

	storageFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_storage_fallbacks_total",
		Help: "Times a persisted record was unreadable and defaults were served instead",
	}, []string{"record"}) // record=library|settings|files

	malformedWindowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bardisplay_malformed_windows_total",
		Help: "Malformed time windows encountered while building the catalog",
	})

	// Override metrics
	overrideActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bardisplay_override_active",
		Help: "Whether an override message is currently active (1) or not (0)",
	})

	overrideTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_override_transitions_total",
		Help: "Override state changes by action",
	}, []string{"action"}) // action=stop|message|preset

	// Admin metrics
	adminActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_admin_actions_total",
		Help: "Admin mutations by action and outcome",
	}, []string{"action", "outcome"}) // outcome=success|rejected|failure

	mediaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_media_requests_total",
		Help: "Requests for uploaded media by result",
	}, []string{"result"}) // result=ok|not_modified|not_found|forbidden

	// Operational metrics
	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// RecordFeed records one assembled feed.
func RecordFeed(degraded bool, catalogSize, eligible int, d time.Duration) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	feedRequestsTotal.WithLabelValues(outcome).Inc()
	feedAssembleDuration.Observe(d.Seconds())
	catalogItems.Set(float64(catalogSize))
	feedEligibleFiles.Set(float64(eligible))
}

func IncStorageFallback(record string) { storageFallbacksTotal.WithLabelValues(record).Inc() }

func AddMalformedWindows(n int) {
	if n > 0 {
		malformedWindowsTotal.Add(float64(n))
	}
}

// RecordOverride records an override transition and the resulting state.
func RecordOverride(action string, active bool) {
	overrideTransitionsTotal.WithLabelValues(action).Inc()
	if active {
		overrideActive.Set(1)
	} else {
		overrideActive.Set(0)
	}
}

func IncAdminAction(action, outcome string) {
	adminActionsTotal.WithLabelValues(action, outcome).Inc()
}

func IncMediaRequest(result string) { mediaRequestsTotal.WithLabelValues(result).Inc() }

func IncConfigReload(success bool) {
	if success {
		configReloadsTotal.WithLabelValues("success").Inc()
		return
	}
	configReloadsTotal.WithLabelValues("failure").Inc()
}
