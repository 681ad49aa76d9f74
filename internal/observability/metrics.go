package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreErrors counts persistence errors by backend and operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wildcard_store_errors_total",
		Help: "Total number of key-value store errors by backend and operation",
	}, []string{"backend", "operation"})

	// StoreSaves counts whole-collection writes by collection key.
	StoreSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wildcard_store_saves_total",
		Help: "Total number of collection saves by collection",
	}, []string{"collection"})

	// InteractionsApplied counts interaction-engine events by kind and outcome.
	InteractionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wildcard_interactions_applied_total",
		Help: "Total number of interactions applied by kind and outcome",
	}, []string{"kind", "outcome"})

	// NotificationsFanned counts notifications enqueued by type.
	NotificationsFanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wildcard_notifications_fanned_total",
		Help: "Total number of notifications enqueued by type",
	}, []string{"type"})

	// FeedCompositions counts derived-view computations by view.
	FeedCompositions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wildcard_feed_compositions_total",
		Help: "Total number of composed feed views by view",
	}, []string{"view"})
)
