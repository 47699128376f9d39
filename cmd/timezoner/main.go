// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/timezoner/lib/autocomplete"
	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/lib/config"
	"github.com/bureau-foundation/timezoner/lib/dispatch"
	"github.com/bureau-foundation/timezoner/lib/errsink"
	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/lib/gateway"
	"github.com/bureau-foundation/timezoner/lib/metrics"
	"github.com/bureau-foundation/timezoner/lib/resolve"
	"github.com/bureau-foundation/timezoner/lib/secret"
	"github.com/bureau-foundation/timezoner/lib/statecache"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
	"github.com/bureau-foundation/timezoner/lib/tzindex"
	"github.com/bureau-foundation/timezoner/lib/tzstore"
	"github.com/bureau-foundation/timezoner/lib/version"
	"github.com/bureau-foundation/timezoner/messaging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		envFile     string
		generateKey bool
		showVersion bool
	)
	flags := pflag.NewFlagSet("timezoner", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to timezoner.yaml (default $TIMEZONER_CONFIG)")
	flags.StringVar(&envFile, "env-file", "", "load secrets from this .env file (default ./.env if present)")
	flags.BoolVar(&generateKey, "generate-key", false, "print a new hex storage key and exit")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("timezoner %s\n", version.Info())
		return nil
	}
	if generateKey {
		key, encoded, err := tzstore.GenerateKey()
		if err != nil {
			return err
		}
		key.Close()
		fmt.Println(encoded)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	secrets, err := config.LoadSecrets(envFile)
	if err != nil {
		return err
	}
	if err := secrets.Validate(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("starting timezoner",
		"version", version.Info(),
		"environment", string(cfg.Environment),
		"store_backend", cfg.Store.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	registry := metrics.NewRegistry()
	instruments := metrics.New(registry)

	catalog := tzcatalog.Default()
	index, err := tzindex.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("opening search index: %w", err)
	}
	defer index.Close()
	if drifted := index.Drift(catalog); len(drifted) > 0 {
		for _, entry := range drifted {
			logger.Warn("index entry names a zone missing from the catalog",
				"display", entry.Display,
				"zone", string(entry.Zone),
			)
		}
		logger.Warn("search index and catalog disagree; rebuild the index with timezoner-index",
			"drifted_entries", len(drifted),
		)
	}
	logger.Info("search index loaded", "entries", index.Len(), "path", cfg.Index.Path)

	store, err := openStore(ctx, cfg, secrets, catalog, clk, instruments, logger.With("component", "store"))
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.Matrix.HomeserverURL,
		// The client timeout must outlast the sync long-poll.
		HTTPClient: &http.Client{Timeout: cfg.Matrix.SyncTimeout + 30*time.Second},
		SendRate:   cfg.Matrix.SendRate,
		SendBurst:  cfg.Matrix.SendBurst,
		Clock:      clk,
		Logger:     logger.With("component", "messaging"),
	})
	if err != nil {
		return err
	}
	accessToken, err := secret.NewFromString(secrets.AccessToken)
	if err != nil {
		return fmt.Errorf("protecting access token: %w", err)
	}
	secrets.AccessToken = ""
	session := client.SessionFromToken(cfg.Matrix.UserID, accessToken)
	defer session.Close()

	whoami, err := session.WhoAmI(ctx)
	if err != nil {
		return fmt.Errorf("validating access token: %w", err)
	}
	if whoami != cfg.Matrix.UserID {
		return fmt.Errorf("access token belongs to %s, but matrix.user_id is %s", whoami, cfg.Matrix.UserID)
	}

	cache := statecache.New()
	app := &Context{
		Session:      session,
		BotUserID:    whoami,
		Cache:        cache,
		Reporter:     errsink.NewReporter(buildSink(cfg, session, logger), clk, logger.With("component", "errsink")),
		Store:        store,
		Index:        index,
		Catalog:      catalog,
		Autocomplete: autocomplete.New(index, logger.With("component", "autocomplete")),
		Resolver:     resolve.New(index, catalog),
		Responder:    NewResponder(session, cache),
		Metrics:      instruments,
		Clock:        clk,
		Logger:       logger.With("component", "handlers"),
	}

	loop := dispatch.New(dispatch.Config{
		Cache:    cache,
		Reporter: app.Reporter,
		Observer: observeTransition(instruments),
		Logger:   logger.With("component", "dispatch"),
	})
	app.registerHandlers(loop)

	syncGateway, err := gateway.New(gateway.Config{
		Session:     session,
		SyncTimeout: cfg.Matrix.SyncTimeout,
		MaxBackoff:  cfg.Matrix.MaxBackoff,
		Clock:       clk,
		Logger:      logger.With("component", "gateway"),
	})
	if err != nil {
		return err
	}

	events := make(chan event.Event, 64)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return syncGateway.Run(groupCtx, events)
	})
	// The loop drains events until the gateway closes the channel, so it
	// must not stop on cancellation itself.
	group.Go(func() error {
		return loop.Run(context.WithoutCancel(groupCtx), events)
	})
	if cfg.Metrics.Listen != "" {
		group.Go(func() error {
			return serveMetrics(groupCtx, cfg.Metrics.Listen, metrics.Handler(registry), logger)
		})
	}

	logger.Info("timezoner running", "user_id", whoami)
	err = group.Wait()

	logger.Info("shutting down, waiting for handlers")
	loop.Wait()
	return err
}

// newLogger builds the process JSON logger at the configured level.
func newLogger(cfg *config.Config, output io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})), nil
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured backend, wraps it with the key, and
// checks the key against what is already stored.
func openStore(ctx context.Context, cfg *config.Config, secrets *config.Secrets, catalog *tzcatalog.Catalog, clk clock.Clock, instruments *metrics.Metrics, logger *slog.Logger) (*tzstore.Store, error) {
	var (
		key *tzstore.Key
		err error
	)
	if secrets.StorageKeyFile != "" {
		key, err = tzstore.LoadKeyFile(secrets.StorageKeyFile)
	} else {
		key, err = tzstore.ParseKey([]byte(secrets.StorageKey))
		secrets.StorageKey = ""
	}
	if err != nil {
		return nil, fmt.Errorf("loading storage key: %w", err)
	}

	var backend tzstore.Backend
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		backend, err = tzstore.OpenPostgres(ctx, secrets.PostgresURL, cfg.Store.PostgresMaxConns)
		secrets.PostgresURL = ""
	default:
		backend, err = tzstore.OpenSQLite(cfg.Store.SQLitePath, cfg.Store.PoolSize, logger)
	}
	if err != nil {
		key.Close()
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}

	store, err := tzstore.New(tzstore.Config{
		Backend: backend,
		Key:     key,
		Catalog: catalog,
		Clock:   clk,
		Logger:  logger,
		Observe: instruments.ObserveStore,
	})
	if err != nil {
		backend.Close()
		key.Close()
		return nil, err
	}
	if err := store.VerifyKey(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("checking storage key: %w", err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("counting records: %w", err)
	}
	logger.Info("store ready", "backend", cfg.Store.Backend, "records", count)
	return store, nil
}

// buildSink always logs; the error file and owner room are optional.
func buildSink(cfg *config.Config, session *messaging.DirectSession, logger *slog.Logger) errsink.Sink {
	sinks := []errsink.Sink{errsink.LogSink{Logger: logger.With("component", "errsink")}}
	if cfg.Errors.File != "" {
		sinks = append(sinks, errsink.NewFileSink(cfg.Errors.File))
	}
	if cfg.Errors.OwnerRoom != "" {
		sinks = append(sinks, errsink.RoomSink{Sender: session, RoomID: cfg.Errors.OwnerRoom})
	}
	return errsink.Multi(sinks...)
}

func observeTransition(instruments *metrics.Metrics) func(dispatch.Transition) {
	return func(transition dispatch.Transition) {
		if transition.State == dispatch.Received {
			instruments.ObserveEvent(string(transition.Event.Kind))
		}
		instruments.ObserveTransition(string(transition.State))
	}
}

// serveMetrics serves /metrics until ctx is done.
func serveMetrics(ctx context.Context, address string, handler http.Handler, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("metrics server listening", "address", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	<-shutdownDone
	return nil
}
