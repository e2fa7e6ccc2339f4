package preview

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

// Metrics records preview server activity.
type Metrics struct {
	gatherer       prometheus.Gatherer
	RendersTotal   prometheus.Counter
	OverlaysTotal  *prometheus.CounterVec
	RenderDuration prometheus.Histogram
}

// NewMetrics registers the preview collectors with reg. A nil reg uses the
// default registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		gatherer: gatherer,
		RendersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "renders_total",
			Help:      "Maps rendered by the preview server.",
		}),
		OverlaysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "overlays_total",
			Help:      "Hover overlays produced, by whether the region joined attribute data.",
		}, []string{"matched"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "choropleth",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a map.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.RendersTotal, m.OverlaysTotal, m.RenderDuration} {
		if err := reg.Register(c); err != nil {
			return nil, eris.Wrap(err, "preview: register metrics")
		}
	}
	return m, nil
}

// Gatherer returns the registry the collectors were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.gatherer }

// ObserveRender records one render.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.RendersTotal.Inc()
	m.RenderDuration.Observe(d.Seconds())
}

// IncOverlay records one hover overlay.
func (m *Metrics) IncOverlay(matched bool) {
	if m == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	}
	m.OverlaysTotal.WithLabelValues(label).Inc()
}
