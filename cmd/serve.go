package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/api"
	"github.com/Vasu1712/soundboard-backend/internal/api/sounds"
	"github.com/Vasu1712/soundboard-backend/internal/auth"
	"github.com/Vasu1712/soundboard-backend/internal/config"
	"github.com/Vasu1712/soundboard-backend/internal/logger"
	"github.com/Vasu1712/soundboard-backend/internal/soundboard"
	"github.com/Vasu1712/soundboard-backend/internal/storage/cache"
	"github.com/Vasu1712/soundboard-backend/internal/storage/memory"
	"github.com/Vasu1712/soundboard-backend/internal/storage/postgres"
	"github.com/Vasu1712/soundboard-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// soundStore is what both the coordinator and the REST API need from
// storage.
type soundStore interface {
	soundboard.Catalog
	sounds.SoundStore
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("addr", ":8080", "listen address")
	flags.String("allowed-origin", "http://127.0.0.1:5173", "browser origin allowed by CORS and the websocket handshake")
	flags.String("storage", config.DriverMemory, "storage driver: memory or postgres")
	flags.String("database-url", "", "postgres connection string")
	flags.String("seed-file", "", "JSON sound catalog loaded into the memory store")
	flags.String("auth-mode", config.AuthModeJWT, "session validation: jwt or database")
	flags.Bool("allow-listeners", false, "admit user-role connections as listeners")
	flags.String("dev-tokens", "", "JSON file of static development tokens")
	flags.String("valkey-addr", "", "valkey address for the catalog and session cache")
	flags.String("log-level", "info", "log level")
	flags.Bool("dev", false, "human-readable development logging")

	for key, flag := range map[string]string{
		config.KeyHTTPAddr:          "addr",
		config.KeyHTTPAllowedOrigin: "allowed-origin",
		config.KeyStorageDriver:     "storage",
		config.KeyStorageDSN:        "database-url",
		config.KeyStorageSeedFile:   "seed-file",
		config.KeyAuthMode:          "auth-mode",
		config.KeyAuthListeners:     "allow-listeners",
		config.KeyAuthDevTokens:     "dev-tokens",
		config.KeyCacheAddr:         "valkey-addr",
		config.KeyLogLevel:          "log-level",
		config.KeyLogDevelopment:    "dev",
	} {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var (
		store soundStore
		db    *sql.DB
	)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		var err error
		db, err = postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		store = postgres.NewSoundStore(db)
	default:
		mem := memory.NewSoundStore()
		if cfg.Storage.SeedFile != "" {
			if err := mem.LoadSeed(cfg.Storage.SeedFile); err != nil {
				return err
			}
		}
		store = mem
	}

	var authenticator auth.Authenticator
	switch cfg.Auth.Mode {
	case config.AuthModeDatabase:
		authenticator = postgres.NewSessionStore(db)
	default:
		authenticator = auth.NewJWTAuthenticator(cfg.Auth.JWTSecret)
	}

	var catalog soundboard.Catalog = store
	if cfg.Cache.Enabled() {
		kv, err := cache.Open(cfg.Cache.ValkeyAddr, cfg.Cache.ValkeyPassword)
		if err != nil {
			return err
		}
		defer kv.Close()
		catalog = cache.NewCachedCatalog(store, kv, cfg.Cache.TTL, log.Named("cache"))
		authenticator = cache.NewCachedAuthenticator(authenticator, kv, cfg.Cache.TTL, log.Named("cache"))
		log.Info("valkey cache enabled", zap.String("addr", cfg.Cache.ValkeyAddr), zap.Duration("ttl", cfg.Cache.TTL))
	}

	if cfg.Auth.DevTokens != "" {
		dev := memory.NewSessionStore()
		if err := dev.LoadFile(cfg.Auth.DevTokens); err != nil {
			return err
		}
		authenticator = auth.Chain(dev, authenticator)
		log.Warn("static development tokens enabled", zap.String("file", cfg.Auth.DevTokens))
	}

	registry := soundboard.NewRegistry(log, time.Now)
	channel := soundboard.NewChannel(registry, log)
	coordinator := soundboard.NewCoordinator(catalog, registry, channel, soundboard.NewActivityLog(soundboard.ActivityCapacity), time.Now, log)
	hub := ws.NewHub(authenticator, registry, coordinator, ws.Options{
		AllowListeners: cfg.Auth.AllowListeners,
		SendBuffer:     cfg.WS.SendBuffer,
		AllowedOrigin:  cfg.HTTP.AllowedOrigin,
	}, log)

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.NewRouter(api.RouterConfig{
			Sounds:        store,
			Authenticator: authenticator,
			Presence:      registry,
			Activity:      coordinator,
			WS:            http.HandlerFunc(hub.ServeWS),
			AllowedOrigin: cfg.HTTP.AllowedOrigin,
			Logger:        log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("auth", cfg.Auth.Mode),
			zap.Bool("allow_listeners", cfg.Auth.AllowListeners),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return errors.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Warn("websocket shutdown incomplete", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
