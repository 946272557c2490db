package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kolah/relay/internal/config"
	"github.com/kolah/relay/internal/logging"
	"github.com/kolah/relay/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo controllers",
		RunE:  runServe,
	}

	config.BindServerFlags(cmd)
	config.BindServeFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	handler, err := newHandler(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("address", cfg.Server.Address),
			zap.String("engine", cfg.Server.Engine))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler mounts the metrics endpoint and the OpenAPI document next to
// the server. Everything else falls through to the server.
func newHandler(cfg *config.Config, logger *zap.Logger) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s, err := newServer(cfg, logger, reg)
	if err != nil {
		return nil, err
	}

	var app http.Handler = s
	mux := http.NewServeMux()

	if cfg.OpenAPI.Enabled || cfg.OpenAPI.Validate {
		doc, err := buildDocument(cfg, s)
		if err != nil {
			return nil, err
		}
		if cfg.OpenAPI.Validate {
			mw, err := middleware.New(doc, &middleware.Options{
				SkipUnknownPaths: true,
				Logger:           logger,
			})
			if err != nil {
				return nil, err
			}
			app = mw.Handler(app)
		}
		if cfg.OpenAPI.Enabled {
			mux.HandleFunc("GET "+cfg.OpenAPI.Path, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/yaml")
				_, _ = w.Write(doc)
			})
		}
	}

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	mux.Handle("/", app)
	return mux, nil
}
