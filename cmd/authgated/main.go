// Command authgated runs the authentication service: the engine, its HTTP
// surface, and an in-memory principal store seeded for development.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/httpapi"
	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

type serviceConfig struct {
	Addr       string        `env:"AUTHGATE_ADDR" envDefault:":8080"`
	JWTSecret  string        `env:"AUTHGATE_JWT_SECRET"`
	AccessTTL  time.Duration `env:"AUTHGATE_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"AUTHGATE_REFRESH_TTL" envDefault:"720h"`
	Issuer     string        `env:"AUTHGATE_ISSUER" envDefault:"authgate"`
	Audience   string        `env:"AUTHGATE_AUDIENCE" envDefault:"authgate-api"`

	RedisAddr     string `env:"AUTHGATE_REDIS_ADDR"`
	LoginThrottle bool   `env:"AUTHGATE_LOGIN_THROTTLE" envDefault:"false"`

	LogLevel  slog.Level `env:"AUTHGATE_LOG_LEVEL" envDefault:"info"`
	LogFormat string     `env:"AUTHGATE_LOG_FORMAT" envDefault:"text"`

	Audit   bool `env:"AUTHGATE_AUDIT" envDefault:"false"`
	Metrics bool `env:"AUTHGATE_METRICS" envDefault:"false"`

	// Dev enables the conveniences a local checkout needs: an embedded
	// Redis when none is configured and two seeded accounts.
	Dev bool `env:"AUTHGATE_DEV" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("authgated exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg serviceConfig
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	configureLogger(cfg)

	if cfg.JWTSecret == "" {
		if !cfg.Dev {
			return errors.New("AUTHGATE_JWT_SECRET is required outside dev mode")
		}
		cfg.JWTSecret = "dev-only-secret-do-not-use-in-production"
		slog.Warn("using the built-in dev JWT secret")
	}

	engineCfg := authgate.DefaultConfig()
	engineCfg.JWT.Secret = []byte(cfg.JWTSecret)
	engineCfg.JWT.AccessTTL = cfg.AccessTTL
	engineCfg.JWT.RefreshTTL = cfg.RefreshTTL
	engineCfg.JWT.Issuer = cfg.Issuer
	engineCfg.JWT.Audience = cfg.Audience
	engineCfg.Security.EnableLoginThrottle = cfg.LoginThrottle
	engineCfg.Audit.Enabled = cfg.Audit
	engineCfg.Metrics.Enabled = cfg.Metrics

	store := authgate.NewMemoryPrincipalStore()

	builder := authgate.New().
		WithConfig(engineCfg).
		WithPrincipalStore(store)

	if cfg.Audit {
		builder = builder.WithAuditSink(authgate.NewJSONWriterSink(os.Stderr))
	}

	if cfg.LoginThrottle {
		client, cleanup, err := redisClient(cfg)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.Dev {
		if err := seedDevPrincipals(engine, store); err != nil {
			return err
		}
		slog.Info("seeded dev accounts", "usernames", []string{"admin", "user"})
	}

	server := httpapi.NewServer(engine, slog.Default())

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("authgated listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func configureLogger(cfg serviceConfig) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// redisClient connects to the configured Redis, or boots an embedded one in
// dev mode when no address is set.
func redisClient(cfg serviceConfig) (redis.UniversalClient, func(), error) {
	if cfg.RedisAddr != "" {
		return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), nil, nil
	}
	if !cfg.Dev {
		return nil, nil, errors.New("AUTHGATE_REDIS_ADDR is required when throttling is enabled")
	}

	mini, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	slog.Warn("using embedded redis", "addr", mini.Addr())
	return redis.NewClient(&redis.Options{Addr: mini.Addr()}), mini.Close, nil
}

// seedDevPrincipals creates the two fixed dev accounts, both with the
// password "password".
func seedDevPrincipals(engine *authgate.Engine, store *authgate.MemoryPrincipalStore) error {
	hash, err := engine.HashPassword("password")
	if err != nil {
		return err
	}

	store.Put(authgate.Principal{
		Username:     "admin",
		Authorities:  []string{"ROLE_ADMIN", "ROLE_USER"},
		PasswordHash: hash,
	})
	store.Put(authgate.Principal{
		Username:     "user",
		Authorities:  []string{"ROLE_USER"},
		PasswordHash: hash,
	})
	return nil
}
