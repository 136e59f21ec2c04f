package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aasha-server/internal/analysis"
	"aasha-server/internal/database"
	"aasha-server/internal/metrics"
	"aasha-server/internal/middleware"
	"aasha-server/internal/routes"
	"aasha-server/internal/screening"
	"aasha-server/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database, logger, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	analyzer, err := analysis.New(cfg.Analysis.Analyzer, analysis.PlaceholderOptions{Delay: cfg.Analysis.Delay})
	if err != nil {
		return err
	}
	if _, ok := analyzer.(*analysis.Placeholder); ok {
		logger.Warn("analysis uses the random placeholder scorer; results have no clinical meaning")
	}
	if cfg.Auth.Enabled && !cfg.IsDevelopment() && cfg.Auth.JWTSecret == "default_jwt_secret" {
		logger.Warn("JWT_SECRET is the built-in default; set a device-specific secret")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st := store.New(db)
	service := screening.NewService(st, analyzer, screening.Options{
		AnalysisTimeout: cfg.Analysis.Timeout,
		MaxCaptureBytes: cfg.Analysis.MaxCaptureBytes,
		Metrics:         metrics.New(reg),
		Logger:          logger.Named("screening"),
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger.Named("http")), gin.Recovery())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{
		Config:   cfg,
		Store:    st,
		Service:  service,
		Sessions: screening.NewSessions(),
		Gatherer: reg,
		Log:      logger.Named("api"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
