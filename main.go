// Command speedbot is the main entrypoint for the speedrun chat bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Joins Twitch chat for the bot's channel and every registered channel
//     and answers the !wr/!pb lookups plus the management commands.
//   - Keeps the stored Twitch user token fresh in the background.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/speedbot/cache"
	"github.com/onnwee/speedbot/chat"
	"github.com/onnwee/speedbot/command"
	"github.com/onnwee/speedbot/config"
	"github.com/onnwee/speedbot/db"
	"github.com/onnwee/speedbot/oauth"
	"github.com/onnwee/speedbot/quotes"
	"github.com/onnwee/speedbot/server"
	"github.com/onnwee/speedbot/srcom"
	"github.com/onnwee/speedbot/telemetry"
	"github.com/onnwee/speedbot/twitchapi"
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
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Error("chat credentials incomplete", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("speedbot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	// Run database migrations: versioned migrations (golang-migrate) first,
	// embedded SQL as fallback for deployments without a schema_migrations table.
	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.RunMigrations(database); err != nil {
		slog.Warn("versioned migrations failed, attempting fallback to embedded SQL",
			slog.Any("err", err),
			slog.String("component", "db_migrate"))
		if err := db.Migrate(context.Background(), database); err != nil {
			slog.Error("failed to migrate db (both versioned and embedded SQL failed)", slog.Any("err", err))
			os.Exit(1)
		}
		slog.Info("embedded SQL migration completed", slog.String("component", "db_migrate"))
	} else {
		slog.Info("versioned migrations completed", slog.String("component", "db_migrate"))
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Helix client for clips and channel lookups. Uses an app access token
	// (client-credentials); IRC chat uses the user token separately.
	var helix *twitchapi.HelixClient
	if cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" {
		helix = &twitchapi.HelixClient{
			TokenSource: &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret},
			ClientID:    cfg.TwitchClientID,
		}
	} else {
		slog.Info("helix disabled (missing twitch client id/secret); !clip unavailable")
	}

	// Resolve the bot's own Twitch user id; !hola/!adios are gated on it.
	botUserID := ""
	if helix != nil {
		ctx2, cancel := context.WithTimeout(ctx, 8*time.Second)
		if id, err := helix.GetUserID(ctx2, strings.ToLower(cfg.TwitchBotUsername)); err != nil {
			slog.Warn("bot user id lookup failed", slog.Any("err", err))
		} else {
			botUserID = id
		}
		cancel()
	}

	router := &command.Router{
		Store:     &db.Store{DB: database},
		Catalog:   &srcom.Client{BaseURL: cfg.SrcomBaseURL, UserAgent: "speedbot/1.0"},
		Helix:     helix,
		Quotes:    &quotes.Source{Command: cfg.QuoteCommand, File: cfg.QuoteFile},
		Results:   cache.New(cache.DefaultTTL, cache.DefaultMaxEntries),
		Cooldown:  command.NewGate(cfg.CommandCooldown),
		Prefix:    cfg.BotPrefix,
		BotUserID: botUserID,
	}

	go func() {
		if err := chat.Start(ctx, cfg, database, router); err != nil {
			slog.Error("chat connection error", slog.Any("err", err))
			stop()
		}
	}()

	// Keep the stored Twitch user token fresh.
	oauth.StartRefresher(ctx, database, "twitch", 5*time.Minute, 15*time.Minute, func(rctx context.Context, refreshToken string) (string, string, time.Time, string, error) {
		access, refresh, expiry, err := twitchapi.RefreshUserToken(rctx, cfg.TwitchClientID, cfg.TwitchClientSecret, refreshToken)
		if err != nil {
			return "", "", time.Time{}, "", err
		}
		return access, refresh, expiry, cfg.TwitchScopes, nil
	})

	// HTTP server (health/status/metrics)
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	go func() {
		if err := server.Start(ctx, database, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
