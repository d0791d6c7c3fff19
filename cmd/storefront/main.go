package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tymelesstyre/storefront/internal/api"
	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
	"github.com/tymelesstyre/storefront/internal/core/service"
	"github.com/tymelesstyre/storefront/internal/infrastructure/db/memory"
	mongostore "github.com/tymelesstyre/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/tymelesstyre/storefront/internal/infrastructure/db/redis"
	"github.com/tymelesstyre/storefront/internal/infrastructure/db/sqlite"
	"github.com/tymelesstyre/storefront/internal/infrastructure/userapi"
	"github.com/tymelesstyre/storefront/internal/pkg/config"
	"github.com/tymelesstyre/storefront/pkg/logger"
	"github.com/tymelesstyre/storefront/pkg/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront",
		Env:     cfg.Env,
	})

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("close storage")
		}
	}()
	log.Info().Str("backend", cfg.Storage.Backend).Msg("storage ready")

	users, err := newUserAPI(cfg, store)
	if err != nil {
		return err
	}

	pricing, err := cfg.PricingPolicy()
	if err != nil {
		return err
	}

	sessions := service.NewSessionService(users, store, logger.Component("session"),
		service.WithRedirects(cfg.Routes.AdminHome, cfg.Routes.Home))
	cart := service.NewCartService(store, logger.Component("cart"), service.WithPricing(pricing))
	guard := service.NewRouteGuard(sessions, cfg.Routes.Login, cfg.Routes.Home)

	if err := sessions.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore session, starting anonymous")
	}
	if err := cart.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore cart, starting empty")
	}

	sessions.Subscribe(func() {
		log.Debug().Str("state", string(sessions.State())).Msg("session changed")
	})
	cart.Subscribe(func() {
		log.Debug().Str("total", cart.Snapshot().TotalText()).Msg("cart changed")
	})

	e := api.NewRouter(api.Dependencies{
		Cart:    cart,
		Session: sessions,
		Guard:   guard,
		Storage: store,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("api_mode", cfg.API.Mode).Msg("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, func() error, error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StorageRedis:
		s, err := redisstore.Open(ctx, redisstore.Options{
			Addr:   cfg.Redis.Addr,
			DB:     cfg.Redis.DB,
			Prefix: cfg.Storage.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StorageMongo:
		s, err := mongostore.Open(ctx, mongostore.Options{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return memory.NewStore(), func() error { return nil }, nil
	}
}

func newUserAPI(cfg *config.Config, store ports.KeyValueStore) (ports.UserAPI, error) {
	if cfg.API.Mode != config.APIModeMemory {
		return userapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, store, logger.Component("userapi")), nil
	}

	users := userapi.NewMemory(cfg.API.JWTSecret, 24*time.Hour, store, logger.Component("userapi"))
	if cfg.API.SeedAdmin != "" {
		username, password, ok := strings.Cut(cfg.API.SeedAdmin, ":")
		if !ok || username == "" || password == "" {
			return nil, errors.New("API_SEED_ADMIN must be username:password")
		}
		if err := users.Seed(username, password, domain.RoleAdmin); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}
	return users, nil
}
