// Command stw222-bot keeps a Discord channel in sync with the published
// stream schedule. It:
//   - Loads configuration and initializes structured logging.
//   - Runs a reconciliation cycle on a cron schedule (and once at startup).
//   - Exposes an HTTP API with /healthz, /readyz, /status, /metrics,
//     schedule previews, and manual sync triggers.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/SebPartof2/stw222-bot/board"
	"github.com/SebPartof2/stw222-bot/config"
	"github.com/SebPartof2/stw222-bot/discordapi"
	"github.com/SebPartof2/stw222-bot/schedule"
	"github.com/SebPartof2/stw222-bot/server"
	"github.com/SebPartof2/stw222-bot/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		// unknown level -> keep info but note once using temporary logger
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var out io.Writer = os.Stdout
	if file := os.Getenv("LOG_FILE"); file != "" {
		// Rotating file log alongside stdout.
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateSyncReady(); err != nil {
		slog.Error("config incomplete", slog.Any("err", err))
		os.Exit(1)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("invalid SCHEDULE_TIMEZONE", slog.String("timezone", cfg.Timezone), slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("stw222-bot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Wire the sync service: schedule source, channel client, reference zone.
	sched := &schedule.Client{URL: cfg.ScheduleURL}
	channel := &discordapi.ChannelClient{
		Client:    &discordapi.Client{Token: cfg.DiscordToken, HTTPClient: &http.Client{Timeout: 30 * time.Second}},
		ChannelID: cfg.ChannelID,
	}
	svc := board.NewService(sched, channel, loc, cfg.PostDelay)

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refresh timer. Overlap is prevented by the service's own cycle token,
	// so a slow rebuild simply makes the colliding tick a no-op.
	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshSpec, func() {
		if _, err := svc.Refresh(ctx, false); err != nil && !errors.Is(err, board.ErrCycleInProgress) {
			slog.Error("scheduled refresh failed", slog.Any("err", err))
		}
	}); err != nil {
		slog.Error("invalid REFRESH_SCHEDULE", slog.String("spec", cfg.RefreshSpec), slog.Any("err", err))
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	// One refresh right away so the channel converges without waiting for the
	// first tick and /readyz can go green.
	go func() {
		if _, err := svc.Refresh(ctx, false); err != nil {
			slog.Error("startup refresh failed", slog.Any("err", err))
		}
	}()

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			// Use an http.Server with timeouts to satisfy G114 and avoid DoS risks
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics/previews/sync triggers)
	go func() {
		if err := server.Start(ctx, svc, cfg); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	slog.Info("stw222-bot started",
		slog.String("channel_id", cfg.ChannelID),
		slog.String("timezone", cfg.Timezone),
		slog.String("refresh", cfg.RefreshSpec))

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
