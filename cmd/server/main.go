package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"costumedesk/internal/platform/config"
	"costumedesk/internal/platform/health"
	"costumedesk/internal/platform/logger"
	"costumedesk/internal/platform/metrics"
	httptransport "costumedesk/internal/transport/http"
	"costumedesk/pkg/platform/middleware/request"
	"costumedesk/pkg/platform/tracer"
)

// poolStatsInterval is how often Redis pool gauges are refreshed.
const poolStatsInterval = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing costumedesk",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"model", cfg.Gemini.Model,
	)

	m := metrics.New(prometheus.DefaultRegisterer)
	healthHandler := health.New(cfg.Environment)

	costumes, err := buildCostumes(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer costumes.close()

	mem, err := buildMemory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer mem.close()
	if mem.redis != nil {
		healthHandler.RegisterCheck("redis", mem.redis.Health)
	}

	assistants, err := buildAssistants(ctx, cfg, assistantDeps{
		costumes: costumes.service,
		memory:   mem.store,
		metrics:  m,
		tracer:   tracer.NewOTel(otel.GetTracerProvider()),
		logger:   log,
	})
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Routes{
		Health:   healthHandler,
		Costumes: costumes.handler,
		Poems:    assistants.poems,
		Chat:     assistants.chat,
	}, httptransport.Config{
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        request.NewMetrics(prometheus.DefaultRegisterer),
		Gatherer:       prometheus.DefaultGatherer,
	}, log)

	// Hijacked websocket connections are not tracked by Shutdown; they end
	// when connCtx is cancelled after the graceful window.
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return connCtx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		cancelConns()
		// chat sessions may still be inside a tool call that emits audit
		// events; the audit publisher is closed only after they end
		if werr := assistants.chat.Wait(shutdownCtx); werr != nil {
			log.Warn("chat sessions still open at shutdown", "error", werr)
		}
		return err
	})
	if mem.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					mem.redis.RecordPoolStats()
				}
			}
		})
	}

	return g.Wait()
}
