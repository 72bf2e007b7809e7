package launch

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spikeekips/cyclecount/util/logging"
)

var metricsShutdownTimeout = time.Second * 3

// MetricsServer serves the prometheus metrics at /metrics.
type MetricsServer struct {
	*logging.Logging
	registry *prometheus.Registry
	listener net.Listener
	bind     string
}

func NewMetricsServer(bind string, collectors ...prometheus.Collector) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()

	for i := range collectors {
		if err := registry.Register(collectors[i]); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return &MetricsServer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "metrics-server").Str("bind", bind)
		}),
		registry: registry,
		bind:     bind,
	}, nil
}

func (s *MetricsServer) Listen() error {
	l, err := net.Listen("tcp", s.bind)
	if err != nil {
		return errors.Wrap(err, "failed to listen metrics bind")
	}

	s.listener = l

	return nil
}

// Addr returns the listening address; nil before Listen.
func (s *MetricsServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Serve blocks until ctx is done.
func (s *MetricsServer) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.registry,
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}),
	))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second * 3}

	errch := make(chan error, 1)

	go func() {
		errch <- srv.Serve(s.listener)
	}()

	s.Log().Debug().Stringer("addr", s.listener.Addr()).Msg("metrics server started")

	select {
	case err := <-errch:
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "failed to shutdown metrics server")
	}

	if err := <-errch; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	s.Log().Debug().Msg("metrics server stopped")

	return nil
}
