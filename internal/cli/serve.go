package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figwire/pkg/buildinfo"
	"github.com/matzehuels/figwire/pkg/cache"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
	"github.com/matzehuels/figwire/pkg/server"
	"github.com/matzehuels/figwire/pkg/store"
)

// newServeCmd creates the serve command: run the HTTP conversion and
// figure-store service until the context is cancelled.
func newServeCmd(cfg *Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long: `Serve starts the figwire HTTP service. Conversion results are cached in
Redis when serve.redis_url is configured, or on disk when serve.cache_dir
is; figures are persisted in MongoDB when serve.mongo_uri is configured.
Without those settings the cache is disabled and figures live in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if addr == "" {
				addr = cfg.Serve.Addr
			}
			ttl, err := cfg.Serve.cacheTTL()
			if err != nil {
				return err
			}

			convCache, err := buildCache(ctx, cfg.Serve)
			if err != nil {
				return err
			}
			defer convCache.Close()

			figStore, err := buildStore(ctx, cfg.Serve)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := figStore.Close(closeCtx); err != nil {
					logger.Warn("close store", "err", err)
				}
			}()

			svc := server.New(server.Config{
				Cache:    convCache,
				Store:    figStore,
				Engine:   cfg.Engine,
				CacheTTL: ttl,
				Logger:   logger,
			})

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           svc.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr, "build", buildinfo.String())
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "shutdown")
				}
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "serve on %s", addr)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides serve.addr)")

	return cmd
}

// buildCache picks the conversion cache backend from the config: Redis when
// configured, a cache directory otherwise, disabled when neither is set.
func buildCache(ctx context.Context, cfg ServeConfig) (cache.Cache, error) {
	switch {
	case cfg.RedisURL != "":
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidConfig, err, "connect to redis at %s", cfg.RedisURL)
		}
		// Namespace keys so a shared redis can serve multiple deployments.
		return cache.NewScopedCache(c, "figwire:"), nil
	case cfg.CacheDir != "":
		c, err := cache.NewFileCache(cfg.CacheDir)
		if err != nil {
			return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidConfig, err, "open cache directory %s", cfg.CacheDir)
		}
		return c, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// buildStore picks the figure store backend from the config.
func buildStore(ctx context.Context, cfg ServeConfig) (store.Store, error) {
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
}
