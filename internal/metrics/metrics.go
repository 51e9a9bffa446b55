// Package metrics exposes the Prometheus registry used to instrument
// pkg/channel, following the teacher's enable/registry indirection
// (pkg/metrics in the teacher repo) so call sites never need a nil check
// beyond what ChannelMetrics already does internally.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/jrdwe/floodfile/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled  atomic.Bool
	registry *prometheus.Registry
	mu       sync.Mutex
)

// Init enables metrics collection and creates a fresh registry. Safe to
// call once at process startup; calling it again replaces the registry.
func Init() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	enabled.Store(true)
	return registry
}

// IsEnabled reports whether Init has been called.
func IsEnabled() bool {
	return enabled.Load()
}

// GetRegistry returns the active registry, or nil if metrics were never
// initialized.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}

// StartServer serves the registry's collectors at /metrics on addr in the
// background. Init must be called first. The caller owns the returned
// server's lifecycle and should Close or Shutdown it on exit.
func StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return server
}
