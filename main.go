package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires middleware and routes around svc.
func NewRouter(svc *TodoService, cfg *Config, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.Telemetry.Enabled {
		r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
		r.Use(MetricsMiddleware())
	}
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware(cfg.Server.CORSOrigin))

	NewTodoHandler(svc, cfg.Server.RequestTimeout.Duration).Register(r)
	return r
}

func main() {
	configPath := flag.String("config", DefaultConfigFile, "path to TOML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	driver := flag.String("driver", "", "record store: postgres, sqlite or memory (overrides config)")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := LoadConfig(*configPath, explicit)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := NewLogger(os.Stderr, cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := SetupTelemetry(ctx, cfg.Telemetry, logger)
		if err != nil {
			logger.Fatal("failed to initialize telemetry", "err", err)
		}
		defer shutdown(context.Background())
	}

	repo, err := OpenRepository(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open record store", "err", err)
	}
	defer repo.Close()

	svc := NewTodoService(repo, logger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: NewRouter(svc, cfg, logger),
	}

	go func() {
		logger.Info("server started", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}
}
