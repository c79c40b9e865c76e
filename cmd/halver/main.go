package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inisoye/halver-sub001/internal/api"
	"github.com/inisoye/halver-sub001/internal/cache"
	"github.com/inisoye/halver-sub001/internal/config"
	"github.com/inisoye/halver-sub001/internal/store"
)

// app owns the process-wide singletons: the persistent store, the query
// cache, and the API client. They are constructed once here and handed to
// every command; nothing reaches for them as globals.
type app struct {
	cfg    *config.Config
	store  *store.Store
	cache  *cache.Store
	client *api.Client
	logger *slog.Logger
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	qc := cache.New(cache.Options{CacheTime: cfg.Cache.CacheTime})

	alert := func(title, message string) {
		fmt.Fprintf(os.Stderr, "\n[%s] %s\n", title, message)
	}
	client := api.NewClient(cfg.API, st, qc, logger, alert)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := cache.NewSweeper(qc, cfg.Cache.SweepInterval, logger)
	go sweeper.Start(ctx)

	a := &app{
		cfg:    cfg,
		store:  st,
		cache:  qc,
		client: client,
		logger: logger,
	}

	if st.FirstRun() {
		logger.Debug("first launch")
		if err := st.MarkLaunched(); err != nil {
			logger.Warn("could not record first launch", "error", err)
		}
	}

	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
