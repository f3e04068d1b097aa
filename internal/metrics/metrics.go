package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "refresh_cycles_total", Help: "Refresh cycles by outcome"},
		[]string{"outcome"},
	)
	FetchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_attempts_total", Help: "Provider fetch attempts, retries included"},
		[]string{"provider"},
	)
	FetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_failures_total", Help: "Provider fetches that failed after retry"},
		[]string{"provider"},
	)
	HistorySize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "history_samples", Help: "Samples currently retained per history kind"},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, FetchAttemptsTotal, FetchFailuresTotal, HistorySize)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
