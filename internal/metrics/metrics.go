package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Backends
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"

	// Store operations
	OpCreateUser        = "create_user"
	OpGetUser           = "get_user"
	OpCreateRoutine     = "create_routine"
	OpGetRoutine        = "get_routine"
	OpListRoutines      = "list_routines"
	OpUpdateRoutine     = "update_routine"
	OpDeleteRoutine     = "delete_routine"
	OpReplaceAssignment = "replace_assignment"
	OpDeleteSlot        = "delete_slot"
	OpDeleteByRoutine   = "delete_assignments_by_routine"
	OpListAssignments   = "list_assignments"

	// Schedule changes
	ChangeAssign   = "assign"
	ChangeUnassign = "unassign"
	ChangeCascade  = "cascade"

	// Results
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultNoop    = "noop"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route", "method"},
	)
)

// Store Metrics
var (
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of backing store operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)

	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Backing store operations that failed",
		},
		[]string{"backend", "operation"},
	)
)

// Domain Metrics
var (
	RoutinesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routines_created_total",
			Help: "Routines created",
		},
	)

	RoutinesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routines_deleted_total",
			Help: "Routines deleted",
		},
	)

	ScheduleChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_changes_total",
			Help: "Schedule slot changes by kind and result",
		},
		[]string{"change", "result"},
	)

	DanglingAssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_dangling_assignments_total",
			Help: "Assignments whose routine could not be resolved while building a week",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Schedule exports written to object storage",
		},
		[]string{"result"},
	)
)

// ObserveStore starts a timer for a store operation. Call the returned func
// with the operation's error when it finishes.
func ObserveStore(backend, op string) func(err error) {
	timer := prometheus.NewTimer(StoreOperationDuration.WithLabelValues(backend, op))
	return func(err error) {
		timer.ObserveDuration()
		if err != nil {
			StoreErrorsTotal.WithLabelValues(backend, op).Inc()
		}
	}
}
