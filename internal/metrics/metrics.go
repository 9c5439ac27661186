package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline counts the externally observable events of the basket/order flow.
type Pipeline struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CheckoutsPublished prometheus.Counter
	OrdersCreated      prometheus.Counter
	OrdersFailed       prometheus.Counter
}

// NewPipeline registers the pipeline counters on reg. Passing a fresh registry
// keeps tests and multi-binary setups from colliding on the default one.
func NewPipeline(reg prometheus.Registerer, service string) *Pipeline {
	m := &Pipeline{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microshop",
			Subsystem: service,
			Name:      "basket_cache_hits_total",
			Help:      "Basket reads served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microshop",
			Subsystem: service,
			Name:      "basket_cache_misses_total",
			Help:      "Basket reads that fell through to the database.",
		}),
		CheckoutsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microshop",
			Subsystem: service,
			Name:      "checkouts_published_total",
			Help:      "Checkout events acknowledged by the broker.",
		}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microshop",
			Subsystem: service,
			Name:      "orders_created_total",
			Help:      "Orders persisted from checkout events.",
		}),
		OrdersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microshop",
			Subsystem: service,
			Name:      "orders_failed_total",
			Help:      "Checkout events whose persistence failed and was not acknowledged.",
		}),
	}
	reg.MustRegister(m.CacheHits, m.CacheMisses, m.CheckoutsPublished, m.OrdersCreated, m.OrdersFailed)
	return m
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
