package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpsTotal counts store operations by entity and operation type.
	OpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealfeed_storage_ops_total",
		Help: "Total number of store operations by entity and operation",
	}, []string{"entity", "op"})

	// CascadeDeletes counts rows removed by cascading deletes, by
	// dependent collection.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealfeed_storage_cascade_deletes_total",
		Help: "Total number of rows removed by shopping list cascade deletes",
	}, []string{"collection"})

	// DroppedJoins counts composed-view rows excluded because a referenced
	// entity did not resolve.
	DroppedJoins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealfeed_storage_dropped_joins_total",
		Help: "Total number of view rows dropped due to unresolved references",
	}, []string{"view"})
)
