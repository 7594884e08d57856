package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"datapilot/adapters/charts"
	"datapilot/adapters/tabular"
	"datapilot/internal"
	"datapilot/internal/clean"
	"datapilot/internal/config"
	"datapilot/internal/profile"
	"datapilot/internal/reportgen"
	"datapilot/internal/session"
	"datapilot/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	store := session.NewStore(cfg.Session.TTL, cfg.Session.SweepInterval)
	defer store.Close()

	profiler := profile.NewProfiler()
	app, err := ui.NewApp(ui.Deps{
		Config: cfg,
		Store:  store.Adapter(),
		Reader: tabular.NewReader(cfg.Upload.InferenceRows),
		Renderer: charts.NewRenderer(charts.Options{
			Width:         cfg.Chart.Width,
			Height:        cfg.Chart.Height,
			HistogramBins: cfg.Chart.HistogramBins,
			BarTopN:       cfg.Chart.BarTopN,
			PieTopN:       cfg.Chart.PieTopN,
		}),
		Cleaner:  clean.NewEngine(),
		Profiler: profiler,
		Builder:  reportgen.NewBuilder(profiler),
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create web app: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting DataPilot on http://localhost:%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
