package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/config"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/health"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/middleware"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/room"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/tracing"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/transport"
)

const defaultAddr = "127.0.0.1:10999"

// verbosity implements flag.Value so -v can be repeated: one for
// info, two for debug, three for debug with the development encoder.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) IsBoolFlag() bool { return true }

func (v *verbosity) Set(value string) error {
	if value == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q", value)
	}
	*v = verbosity(n)
	return nil
}

func main() {
	var verbose verbosity
	flag.Var(&verbose, "v", "increase log verbosity (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [listen-addr]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	addr := defaultAddr
	if flag.NArg() > 0 {
		addr = flag.Arg(0)
	}
	if !config.IsValidHostPort(addr) {
		slog.Error("Listen address must be in format 'host:port'", "addr", addr)
		os.Exit(1)
	}

	// Load .env file for local development.
	// Try multiple paths to handle different ways of running the app
	envPaths := []string{".env", "../../../.env", "../../.env"}
	var envLoaded bool

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			slog.Info("Loaded environment from", "path", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		slog.Warn("No .env file found in any expected location, relying on environment variables")
	}

	// Validate environment variables before starting the server
	cfg, err := config.ValidateEnv()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	if err := logging.Initialize(int(verbose), cfg.DevelopmentMode); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.DevelopmentMode {
		logging.Info(ctx, "Running in DEVELOPMENT MODE")
	}

	// --- Tracing (Optional) ---
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "planner", cfg.OTLPEndpoint, cfg.OTLPInsecureSkipVerify)
		if err != nil {
			logging.Error(ctx, "Failed to initialize tracing", zap.Error(err))
			os.Exit(1)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logging.Error(ctx, "Failed to shut down tracer provider", zap.Error(err))
			}
		}()
		logging.Info(ctx, "✅ Tracing initialized", zap.String("collector", cfg.OTLPEndpoint))
	}

	// --- Room Registry ---
	var saver room.Saver
	if cfg.SnapshotDir != "" {
		fileSaver, err := room.NewFileSaver(cfg.SnapshotDir)
		if err != nil {
			logging.Error(ctx, "Failed to prepare snapshot directory", zap.Error(err))
			return
		}
		saver = fileSaver
		logging.Info(ctx, "Closing-room snapshots enabled", zap.String("dir", cfg.SnapshotDir))
	}

	app := room.NewApp(saver, cfg.DefaultEditor)

	// Ping every connection on a fixed cadence so dead peers get
	// reaped by their own read pumps.
	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go app.RunHeartbeat(heartbeatCtx, cfg.HeartbeatInterval)

	// --- Set up Server ---
	router := gin.Default()

	// Cors
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Tracing and correlation ids for every request
	router.Use(otelgin.Middleware("planner"))
	router.Use(middleware.CorrelationID())

	// Routing. The websocket handshake is served on every path that is
	// not one of the operational endpoints below; join parameters
	// travel in the query string.
	hub := transport.NewHub(app, cfg.AllowedOrigins)
	router.NoRoute(hub.ServeWs)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoints
	healthHandler := health.NewHandler(app, cfg.SnapshotDir)
	router.GET("/health/live", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)

	// Start the server.
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		logging.Info(ctx, "Planner server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(ctx, "Failed to run server", zap.Error(err))
			syscall.Kill(os.Getpid(), syscall.SIGTERM)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "Shutting down server...")

	// The context gives in-flight work 30 seconds to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop pinging, then close every room and connection gracefully
	stopHeartbeat()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "Error during room registry shutdown", zap.Error(err))
	}

	// Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "Server forced to shutdown", zap.Error(err))
	}

	logging.Info(ctx, "Server exiting")
}
