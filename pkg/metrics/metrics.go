package metrics

import (
	"net/http"

	"github.com/nergy-se/heatprice/pkg/price"
	"github.com/nergy-se/heatprice/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "heatprice_"

	resultSuccess = "success"
	resultError   = "error"
)

// Metrics bundles controller metrics.
type Metrics struct {
	PriceUpdates    *prometheus.CounterVec
	MeasureErrors   prometheus.Counter
	State           *prometheus.GaugeVec
	LastMeasurement prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New constructs metrics and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		PriceUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_updates_total",
				Help: "Total price cache update attempts by action and result",
			},
			[]string{"action", "result"},
		),
		MeasureErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "measurement_errors_total",
			Help: "Total failed temperature readings",
		}),
		State: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "state",
				Help: "Latest measurement cycle values by field",
			},
			[]string{"field"},
		),
		LastMeasurement: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_measurement_timestamp_seconds",
			Help: "Unix time of the latest measurement cycle",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.PriceUpdates,
		m.MeasureErrors,
		m.State,
		m.LastMeasurement,
	)
	return m
}

func (m *Metrics) PriceUpdate(action price.UpdateAction, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.PriceUpdates.WithLabelValues(action.String(), result).Inc()
}

func (m *Metrics) MeasurementError() {
	m.MeasureErrors.Inc()
}

func (m *Metrics) Observe(s state.Snapshot) {
	for field, v := range s.Map() {
		switch v := v.(type) {
		case float64:
			m.State.WithLabelValues(field).Set(v)
		case int64:
			m.State.WithLabelValues(field).Set(float64(v))
		}
	}
	m.LastMeasurement.Set(float64(s.Time.Unix()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
