// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: c39a1f5e-8b06-4d72-9e3c-50f8a2d6b714

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	storageOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grimorium",
		Name:      "storage_operations_total",
		Help:      "Total number of storage operations by name",
	}, []string{"op"})
	storageFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grimorium",
		Name:      "storage_failures_total",
		Help:      "Total number of classified storage failures by kind",
	}, []string{"kind"})
	orphanFilesRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grimorium",
		Name:      "orphan_files_removed_total",
		Help:      "Total number of orphaned asset files removed by cleanup",
	})
	duplicateMapsFixed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grimorium",
		Name:      "duplicate_maps_fixed_total",
		Help:      "Total number of duplicate region map groups repaired",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(storageOpsTotal, storageFailuresTotal,
			orphanFilesRemoved, duplicateMapsFixed)
	})
}

// Storage operation helpers
func IncStorageOp(op string) { storageOpsTotal.WithLabelValues(op).Inc() }

func IncStorageFailure(kind string) { storageFailuresTotal.WithLabelValues(kind).Inc() }

func AddOrphanFilesRemoved(n int) { orphanFilesRemoved.Add(float64(n)) }

func IncDuplicateMapsFixed() { duplicateMapsFixed.Inc() }
