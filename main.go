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

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robertkozin/video-link-resolver/bot"
	"github.com/robertkozin/video-link-resolver/resolve"
	"github.com/robertkozin/video-link-resolver/tr"
)

type config struct {
	Addr     string     `env:"ADDR" envDefault:":8000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	RapidAPIKey        string `env:"RAPIDAPI_KEY"`
	RapidAPIHost       string `env:"RAPIDAPI_HOST"`
	RapidAPIURL        string `env:"RAPIDAPI_URL"`
	RapidAPIYouTubeURL string `env:"RAPIDAPI_YOUTUBE_URL"`

	YTDLPPath     string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	EngineTimeout time.Duration `env:"ENGINE_TIMEOUT" envDefault:"15s"`

	DiscordToken string `env:"DISCORD_TOKEN"`

	OtelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders  string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// a missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := env.ParseAs[config]()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tr.Init(ctx, tr.Config{
		ServiceName: "video-link-resolver",
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
	}); err != nil {
		return err
	}
	defer tr.Shutdown()

	orchestrator := newOrchestrator(cfg)

	if cfg.DiscordToken != "" {
		discord := &bot.Discord{Token: cfg.DiscordToken, Resolver: orchestrator}
		if err := discord.Start(); err != nil {
			return err
		}
		defer discord.Close()
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           bot.API(orchestrator),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("listening", "addr", cfg.Addr)
	return serve(ctx, server, nil)
}

// serve runs server until ctx is done and then shuts it down gracefully. A
// nil ln makes the server listen on its own Addr.
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutting down", "err", err)
		}
	}()

	var err error
	if ln != nil {
		err = server.Serve(ln)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func newOrchestrator(cfg config) *resolve.Orchestrator {
	o := &resolve.Orchestrator{Timeout: cfg.EngineTimeout}

	ytdlp, err := resolve.NewYTDLP(cfg.YTDLPPath)
	if err != nil {
		slog.Warn("local engine disabled", "err", err)
	} else {
		o.Local = resolve.NewLocal(ytdlp)
	}

	remote := resolve.NewRemote(resolve.RemoteConfig{
		Key:             cfg.RapidAPIKey,
		Host:            cfg.RapidAPIHost,
		GenericEndpoint: cfg.RapidAPIURL,
		YouTubeEndpoint: cfg.RapidAPIYouTubeURL,
	})
	if !remote.Enabled() {
		slog.Warn("remote engine disabled, RAPIDAPI_KEY is not set")
	}
	o.Remote = remote

	slog.Info("engines configured", "local", o.Local, "remote", remote)
	return o
}
