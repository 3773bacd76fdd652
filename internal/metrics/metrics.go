// Package metrics exports search progress and worker states as Prometheus
// metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dreamware/ipsearch/internal/progress"
	"github.com/dreamware/ipsearch/internal/search"
)

const namespace = "ipsearch"

// StateSource reports how many workers are in each state.
type StateSource interface {
	CountByState() map[search.WorkerState]int
}

// Collector is a progress.Reporter that mirrors each snapshot into gauges,
// and exposes worker states read from a StateSource at scrape time.
type Collector struct {
	examined prometheus.Gauge
	total    prometheus.Gauge
	rate     prometheus.Gauge
	percent  prometheus.Gauge
	eta      prometheus.Gauge
	elapsed  prometheus.Gauge
	reports  prometheus.Counter
}

// New registers the search metrics with reg. states may be nil when worker
// state metrics are not wanted.
func New(reg prometheus.Registerer, states StateSource) *Collector {
	c := &Collector{
		examined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_examined",
			Help:      "Addresses hashed so far, as flushed by workers.",
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_total",
			Help:      "Size of the searched address range.",
		}),
		rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_per_second",
			Help:      "Average search throughput since the run started.",
		}),
		percent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_percent",
			Help:      "Share of the range examined, 0-100.",
		}),
		eta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eta_seconds",
			Help:      "Estimated seconds until the range is exhausted; -1 while unknown.",
		}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elapsed_seconds",
			Help:      "Seconds since the run started.",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_reports_total",
			Help:      "Progress snapshots published.",
		}),
	}
	c.eta.Set(-1)

	reg.MustRegister(c.examined, c.total, c.rate, c.percent, c.eta, c.elapsed, c.reports)

	if states != nil {
		for _, s := range search.States {
			state := s
			reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "workers",
				Help:        "Workers per lifecycle state.",
				ConstLabels: prometheus.Labels{"state": string(state)},
			}, func() float64 {
				return float64(states.CountByState()[state])
			}))
		}
	}
	return c
}

// Report updates the gauges from s.
func (c *Collector) Report(s progress.Snapshot) {
	c.examined.Set(float64(s.Processed))
	c.total.Set(float64(s.Total))
	c.rate.Set(s.Rate)
	c.percent.Set(s.Percent)
	c.elapsed.Set(s.Elapsed.Seconds())
	if s.ETAKnown {
		c.eta.Set(s.ETA.Seconds())
	} else {
		c.eta.Set(-1)
	}
	c.reports.Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
