package main // Entry point of the admin HTTP server

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/mufant-museum/internal/config"
	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/handler"
	"github.com/iliyamo/mufant-museum/internal/inspect"
	"github.com/iliyamo/mufant-museum/internal/middleware"
	"github.com/iliyamo/mufant-museum/internal/provision"
	"github.com/iliyamo/mufant-museum/internal/queue"
	"github.com/iliyamo/mufant-museum/internal/repository"
	"github.com/iliyamo/mufant-museum/internal/router"
	"github.com/iliyamo/mufant-museum/internal/schema"
	queue_publisher "github.com/iliyamo/mufant-museum/internal/service"
)

func main() {
	cfg := config.MustLoad()
	if cfg.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.StoreOptions())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := schema.NewManager(cfg.Dialect()).EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	var opts []provision.Option
	if cfg.Queue.Enabled {
		opts = append(opts, provision.WithNotifier(queue_publisher.New(cfg.Queue.URL)))
		go func() {
			if err := queue.StartProvisionConsumer(ctx, cfg.Queue.URL, cfg.Queue.LogDir); err != nil && ctx.Err() == nil {
				log.Printf("provision-consumer: stopped: %v", err)
			}
		}()
	}
	pipeline := provision.New(db, cfg.Dialect(), opts...)
	reporter := inspect.NewReporter(db, cfg.Dialect())

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db)), cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminHandler(reporter, pipeline, rdb, cfg.Cache.Prefix),
		cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, rdb),
		middleware.NewRedisCache(cfg.Cache, rdb),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.DBDriver)
	if err := e.Start(addr); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
