// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

// Admission outcomes recorded by RegistrationAdmissions.
const (
	AdmissionAdmitted          = "admitted"
	AdmissionCapacityReached   = "capacity_reached"
	AdmissionAlreadyRegistered = "already_registered"
	AdmissionEventNotFound     = "event_not_found"
	AdmissionError             = "error"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventscape_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventscape_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RegistrationAdmissions counts admission decisions by outcome.
	RegistrationAdmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventscape_registration_admissions_total",
		Help: "Registration admission decisions by outcome",
	}, []string{"outcome"})

	// NearbyQueryResults tracks how many events a nearby search returned.
	NearbyQueryResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eventscape_nearby_query_results",
		Help:    "Number of events returned by nearby searches",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})

	// NotificationsPublished counts notifications pushed to subscribers.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventscape_notifications_published_total",
		Help: "Notifications published by delivery result",
	}, []string{"result"})
)

const queryStartKey = "observability:query_start"

// RegisterDatabaseMetrics installs GORM callbacks that record query latency
// per operation and table.
func RegisterDatabaseMetrics(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}

	for _, h := range hooks {
		op := h.op
		if err := h.before("metrics:before_"+op, func(tx *gorm.DB) {
			tx.InstanceSet(queryStartKey, time.Now())
		}); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+op, func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
		}); err != nil {
			return err
		}
	}
	return nil
}

// RecordAdmission increments the admission counter for outcome.
func RecordAdmission(outcome string) {
	RegistrationAdmissions.WithLabelValues(outcome).Inc()
}
