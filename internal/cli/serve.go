package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetpress/internal/api"
	"github.com/matzehuels/sheetpress/pkg/cache"
	"github.com/matzehuels/sheetpress/pkg/pipeline"
	"github.com/matzehuels/sheetpress/pkg/store"
)

// serveCommand creates the serve command for running the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		mongoURL string
		mongoDB  string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Run the HTTP layout API.

The server exposes the layout pipeline over HTTP: POST /v1/optimize computes
a layout for a posted sheet, and GET /v1/runs/{id} retrieves earlier runs.

By default runs are kept in memory and layouts are cached on the local disk.
Pass --mongo-url for persistent run history and --redis-url for a shared
layout cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisURL, mongoURL, mongoDB, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for a shared layout cache (default: local file cache)")
	cmd.Flags().StringVar(&mongoURL, "mongo-url", "", "MongoDB URL for persistent run history (default: in-memory)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "sheetpress", "MongoDB database name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout caching")

	return cmd
}

// runServe wires the cache, run store, and router, then serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, redisURL, mongoURL, mongoDB string, noCache bool) error {
	layoutCache, err := c.newServeCache(ctx, redisURL, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(layoutCache, nil, c.Logger)
	defer runner.Close()

	var runs store.RunStore
	if mongoURL != "" {
		runs, err = store.NewMongoStore(ctx, mongoURL, mongoDB)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		c.Logger.Info("run history in mongodb", "database", mongoDB)
	} else {
		runs = store.NewMemoryStore()
		c.Logger.Warn("run history is in-memory and will not survive restarts")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runs.Close(closeCtx)
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(runner, runs, c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	c.Logger.Info("api listening", "addr", addr)

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (c *CLI) newServeCache(ctx context.Context, redisURL string, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case redisURL != "":
		c.Logger.Info("layout cache in redis")
		return cache.NewRedisCache(ctx, redisURL)
	default:
		return newCache(false)
	}
}
