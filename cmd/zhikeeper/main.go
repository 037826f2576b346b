// Command zhikeeper is the page-augmentation daemon for zhihu.com.
//
// Usage:
//
//	zhikeeper -config zhikeeper.yaml           # keep pages from YAML config
//	zhikeeper -url https://www.zhihu.com/...   # quick single-page run
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/zhikeeper/augment"
	"github.com/hazyhaar/zhikeeper/config"
	"github.com/hazyhaar/zhikeeper/dom/rodom"
	"github.com/hazyhaar/zhikeeper/event"
	"github.com/hazyhaar/zhikeeper/reconcile"
	"github.com/hazyhaar/zhikeeper/theme"
)

func main() {
	configPath := flag.String("config", "", "path to zhikeeper.yaml config file")
	singleURL := flag.String("url", "", "keep a single URL (stdout sink)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *singleURL); err != nil {
		logger.Error("zhikeeper: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, singleURL string) error {
	if singleURL != "" {
		return runKeeper(ctx, logger, defaultConfig(singleURL))
	}
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return runKeeper(ctx, logger, cfg)
	}

	fmt.Fprintln(os.Stderr, "usage: zhikeeper -config <file> | -url <url>")
	os.Exit(1)
	return nil
}

func runKeeper(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	mgr := rodom.NewManager(rodom.BrowserConfig{
		RemoteURL:        cfg.Browser.Remote,
		Headful:          cfg.Browser.Stealth == "headful",
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("browser start: %w", err)
	}
	defer mgr.Close()

	sink := buildSink(cfg.Sinks, logger)
	defer sink.Close()

	var keepers []*reconcile.Keeper
	for _, page := range cfg.Pages {
		doc, err := mgr.Open(ctx, page.URL,
			rodom.WithDebounceWindow(cfg.Debounce.Window),
			rodom.WithDebounceMax(cfg.Debounce.MaxBuffer))
		if err != nil {
			logger.Error("zhikeeper: open page failed", "id", page.ID, "url", page.URL, "error", err)
			continue
		}

		navigated, err := theme.Sync(doc, theme.Mode(cfg.Theme), logger)
		if err != nil {
			logger.Warn("zhikeeper: theme sync failed", "id", page.ID, "error", err)
		}
		if navigated {
			// The corrected page has loaded; watch and reconcile it as-is.
			logger.Info("zhikeeper: theme corrected", "id", page.ID)
		}

		aug := augment.New(doc, rodom.NewClipboard(doc),
			augment.WithBases(augment.Bases{Web: cfg.Bases.Web, Column: cfg.Bases.Column}),
			augment.WithLogger(logger))

		k := reconcile.New(doc, aug,
			reconcile.WithLogger(logger),
			reconcile.WithSweepInterval(cfg.Sweep.Interval),
			reconcile.WithSink(sink))
		if err := k.Start(ctx); err != nil {
			logger.Error("zhikeeper: keeper start failed", "id", page.ID, "error", err)
			continue
		}
		logger.Info("zhikeeper: keeping page", "id", page.ID, "url", page.URL)
		keepers = append(keepers, k)
	}

	if len(keepers) == 0 {
		return fmt.Errorf("no pages started")
	}

	<-ctx.Done()
	for _, k := range keepers {
		k.Stop()
	}
	return nil
}

func buildSink(configs []config.SinkConfig, logger *slog.Logger) event.Sink {
	var sinks []event.Sink
	for _, sc := range configs {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, event.NewStdout(nil))
		case "webhook":
			sinks = append(sinks, event.NewWebhook(sc.URL, event.WithWebhookLogger(logger)))
		default:
			logger.Warn("zhikeeper: unknown sink type", "type", sc.Type)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, event.NewStdout(nil))
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return event.NewRouter(logger, sinks...)
}

func defaultConfig(url string) *config.Config {
	return &config.Config{
		Browser: config.BrowserConfig{
			Stealth:          "headless",
			ResourceBlocking: []string{"images", "fonts", "media"},
		},
		Pages: []config.PageConfig{{ID: "page-0", URL: url}},
		Debounce: config.DebounceConfig{
			Window:    250 * time.Millisecond,
			MaxBuffer: 1000,
		},
		Sweep: config.SweepConfig{Interval: time.Second},
		Theme: "auto",
	}
}
