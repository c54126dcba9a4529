package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ssplabs/atende/internal/agent"
	"github.com/ssplabs/atende/internal/bus"
	"github.com/ssplabs/atende/internal/channels"
	"github.com/ssplabs/atende/internal/config"
	"github.com/ssplabs/atende/internal/dispatch"
	"github.com/ssplabs/atende/internal/geo"
	"github.com/ssplabs/atende/internal/media"
	"github.com/ssplabs/atende/internal/providers"
	"github.com/ssplabs/atende/internal/recorder"
	"github.com/ssplabs/atende/internal/session"
)

const defaultSystemPrompt = "Você é um assistente virtual de atendimento ao cidadão. " +
	"Responda sempre em português, de forma clara e objetiva."

var configPath string

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	root := &cobra.Command{
		Use:   "atende",
		Short: "Multi-modal conversational attendance service",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to config file")
	root.AddCommand(serveCmd(), chatCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	adapter, err := providers.New(cfg.Provider.Kind, cfg.Provider.APIKey, cfg.Provider.BaseURL,
		cfg.Provider.Model, float32(cfg.Provider.Temperature))
	if err != nil {
		return err
	}

	ag := agent.New(store, adapter, systemPrompt(cfg))

	sink, closeSink, err := buildSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()
	rec := recorder.New(sink, cfg.Recorder.QueueSize)
	defer rec.Close()

	downloader := media.NewDownloader(cfg.Media.AccountSID, cfg.Media.AuthToken)
	audio := &media.AudioChain{
		Downloader:  downloader,
		Converter:   media.NewFFmpegConverter(cfg.Media.FFmpegPath),
		Archive:     media.NewDirArchive(cfg.Media.ArchiveDir),
		Transcriber: media.NewTranscriber(cfg.Media.WhisperURL, cfg.Media.WhisperKey, "", cfg.Media.Language),
	}

	visionKey := cfg.Provider.VisionAPIKey
	if visionKey == "" {
		visionKey = cfg.Provider.APIKey
	}
	image := &media.ImageChain{
		Downloader:  downloader,
		Interpreter: providers.NewVisionInterpreter(visionKey, "", cfg.Provider.VisionModel, ""),
	}

	msgBus := bus.NewMessageBus(cfg.Dispatch.BusBufferSize)
	mgr := channels.NewManager(msgBus)
	if cfg.Channels.WhatsApp.Enabled {
		raw, _ := json.Marshal(cfg.Channels.WhatsApp)
		if err := mgr.AddChannel("whatsapp", raw); err != nil {
			return err
		}
	}
	if cfg.Channels.Telegram.Enabled {
		raw, _ := json.Marshal(cfg.Channels.Telegram)
		if err := mgr.AddChannel("telegram", raw); err != nil {
			return err
		}
	}

	dispatcher := dispatch.New(dispatch.Config{
		Bus:        msgBus,
		Agent:      ag,
		Audio:      audio,
		Image:      image,
		Geocoder:   geo.NewGeocoder(cfg.Geo.APIKey, cfg.Geo.BaseURL),
		Recorder:   rec,
		AsyncAudio: cfg.Dispatch.AsyncAudio,
		Timeout:    time.Duration(cfg.Dispatch.TimeoutSeconds) * time.Second,
	})

	if sweeper := startEviction(ctx, store, cfg.Session); sweeper != nil {
		defer sweeper.Stop()
	}

	if err := mgr.StartAll(ctx); err != nil {
		return err
	}
	defer mgr.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		msgBus.DispatchOutbound(gctx)
		return nil
	})
	g.Go(func() error {
		err := dispatcher.Run(gctx)
		if errors.Is(err, context.Canceled) || gctx.Err() != nil {
			return nil
		}
		return err
	})

	slog.Info("service started", "provider", cfg.Provider.Kind, "sessionBackend", cfg.Session.Backend)
	return g.Wait()
}

// startEviction schedules the idle-session sweep when the backend
// supports it and a TTL is configured.
func startEviction(ctx context.Context, store session.Store, cfg config.Session) *cron.Cron {
	sqlStore, ok := store.(*session.SQLiteStore)
	if !ok || cfg.TTLMinutes <= 0 {
		return nil
	}
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute

	c := cron.New()
	_, _ = c.AddFunc("@every 10m", func() {
		n, err := sqlStore.EvictExpired(ctx, ttl)
		if err != nil {
			slog.Error("session eviction failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("evicted idle sessions", "messages", n, "ttl", ttl)
		}
	})
	c.Start()
	return c
}

func buildStore(cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case "sqlite":
		s, err := session.NewSQLiteStore(cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "", "memory":
		return session.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func buildSink(cfg *config.Config) (recorder.Sink, func(), error) {
	switch cfg.Recorder.Backend {
	case "", "sqlite":
		s, err := recorder.NewSQLiteSink(cfg.Recorder.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "ndjson":
		s, err := recorder.NewNDJSONSink(cfg.Recorder.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "none":
		return discardSink{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown recorder backend %q", cfg.Recorder.Backend)
	}
}

// discardSink drops records when analytics storage is disabled.
type discardSink struct{}

func (discardSink) Store(context.Context, recorder.Record) error { return nil }

func systemPrompt(cfg *config.Config) string {
	if cfg.Provider.SystemPromptFile != "" {
		data, err := os.ReadFile(cfg.Provider.SystemPromptFile)
		if err != nil {
			slog.Warn("failed to read system prompt file, using default", "path", cfg.Provider.SystemPromptFile, "error", err)
			return defaultSystemPrompt
		}
		return strings.TrimSpace(string(data))
	}
	return defaultSystemPrompt
}

func chatCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message through the pipeline from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			adapter, err := providers.New(cfg.Provider.Kind, cfg.Provider.APIKey, cfg.Provider.BaseURL,
				cfg.Provider.Model, float32(cfg.Provider.Temperature))
			if err != nil {
				return err
			}

			store, closeStore, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ag := agent.New(store, adapter, systemPrompt(cfg))
			reply := ag.GenerateReply(cmd.Context(), strings.Join(args, " "), sessionID)
			if !reply.Success() {
				return fmt.Errorf("%s", reply.Err())
			}
			fmt.Println(reply.Data())
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "cli", "session id for conversation history")
	return cmd
}
