package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one symbol table server on a private
// registry, so several servers can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	Commands *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Bindings prometheus.Gauge
	Buckets  prometheus.Gauge
	Rehashes prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symtable_commands_total",
			Help: "Commands processed by name",
		}, []string{"command"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symtable_errors_total",
			Help: "Error replies by reason",
		}, []string{"reason"}),
		Bindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "symtable_bindings",
			Help: "Bindings currently stored in the table",
		}),
		Buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "symtable_buckets",
			Help: "Current bucket count of the hash table",
		}),
		Rehashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "symtable_rehash_total",
			Help: "Completed rehashes into a larger bucket array",
		}),
	}

	m.Registry.MustRegister(m.Commands, m.Errors, m.Bindings, m.Buckets, m.Rehashes)
	return m
}

func (m *Metrics) IncCommand(name string) {
	m.Commands.WithLabelValues(name).Inc()
}

func (m *Metrics) IncError(reason string) {
	m.Errors.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetBindings(n int) {
	m.Bindings.Set(float64(n))
}

// ObserveGrow records a rehash from one bucket count to the next.
func (m *Metrics) ObserveGrow(_, to int) {
	m.Rehashes.Inc()
	m.Buckets.Set(float64(to))
}

func (m *Metrics) SetBuckets(n int) {
	m.Buckets.Set(float64(n))
}

// Handler serves /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}
