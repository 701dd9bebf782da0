// Command server runs the pet adoption API.
//
// @title                       Pet Adoption API
// @version                     1.0
// @description                 Marketplace API for pet listings, adoption requests and owner/adopter chat.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/pawhaven/adoption-api/docs"
	"github.com/pawhaven/adoption-api/internal/api"
	"github.com/pawhaven/adoption-api/internal/api/handler"
	"github.com/pawhaven/adoption-api/internal/core/ports"
	"github.com/pawhaven/adoption-api/internal/core/service"
	mongodb "github.com/pawhaven/adoption-api/internal/infrastructure/db/mongo"
	redisdb "github.com/pawhaven/adoption-api/internal/infrastructure/db/redis"
	"github.com/pawhaven/adoption-api/internal/infrastructure/http/handlers"
	"github.com/pawhaven/adoption-api/internal/infrastructure/queue"
	"github.com/pawhaven/adoption-api/internal/pkg/config"
	"github.com/pawhaven/adoption-api/internal/realtime"
	"github.com/pawhaven/adoption-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine: production injects the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "adoption-api",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	store, err := mongodb.NewStore(db)
	if err != nil {
		return err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Async side effects ---
	dispatcher := queue.NewDispatcher(cfg.Workers, store.Activities, logger.Component("activity"))
	dispatcher.Start()
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Close(dctx); err != nil {
			log.Warn().Err(err).Msg("activity dispatcher did not drain")
		}
	}()

	var events ports.EventPublisher
	if cfg.Broker.URL != "" {
		publisher, err := queue.NewPublisher(cfg.Broker.URL, logger.Component("events"))
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher
	}

	// --- Core ---
	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	revocations := redisdb.NewRevocationList(rdb)
	identity := service.NewIdentityResolver(tokens, store.Users, revocations, cfg.Auth.CookieName, logger.Component("identity"))

	authSvc := service.NewAuthService(store.Users, tokens, revocations, dispatcher, logger.Component("auth"))
	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return err
		}
	}

	petSvc := service.NewPetService(store.Pets, store.Images, store.Adoptions, store.Favorites, dispatcher, cfg.Upload.MaxBytes, logger.Component("pets"))
	chatSvc := service.NewChatService(store.Chats, store.Users, dispatcher, logger.Component("chat"))

	hub := realtime.NewHub(logger.Component("realtime"))
	defer hub.Shutdown()
	chatSvc.SetRelay(hub)

	adminSvc := service.NewAdminService(store.Users, petSvc, store.Pets, store.Adoptions, store.Favorites,
		store.Chats, dispatcher, logger.Component("admin"))
	checks := map[string]handlers.Check{
		"mongodb": handlers.MongoCheck(db),
		"redis":   handlers.RedisCheck(rdb),
	}

	e := api.NewRouter(api.Deps{
		Log:            log,
		Identity:       identity,
		Cookie:         handler.CookieOptions{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		Auth:           authSvc,
		Pets:           petSvc,
		Adoptions:      service.NewAdoptionService(store.Adoptions, store.Pets, events, dispatcher, logger.Component("adoptions")),
		Favorites:      service.NewFavoriteService(store.Favorites, store.Pets),
		Chats:          chatSvc,
		Admin:          adminSvc,
		Settings:       service.NewSettingService(store.Settings, dispatcher),
		Activity:       service.NewActivityService(store.Activities),
		Hub:            hub,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		HealthChecks:   checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
