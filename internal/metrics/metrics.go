package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studyplanner"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	TimetablesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timetables_generated_total",
		Help:      "Timetable previews computed by the allocator.",
	})

	TimetableCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timetable_cache_hits_total",
		Help:      "Timetable previews served from cache.",
	})

	SlotsAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slots_allocated_total",
		Help:      "Session slots produced by the allocator.",
	})

	NonPositiveSlots = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "nonpositive_slots_total",
		Help:      "Allocated slots whose duration is zero or negative.",
	})

	SessionsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_saved_total",
		Help:      "Outcome of each slot handed to save-timetable.",
	}, []string{"outcome"})

	CalendarExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calendar_exports_total",
		Help:      "Calendar exports by result (rendered, cached, failed).",
	}, []string{"result"})
)
