package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/option"

	"workboard/api"
	"workboard/notify"
	"workboard/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("unable to load .env")
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	rows, err := openRowStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	adapter := storage.NewAdapter(rows, cfg.sheet)
	var store api.Storage = adapter

	hub := notify.NewHub()
	var changes notify.Publisher = hub
	if cfg.redisConn != "" {
		rc := redis.NewClient(redisOptions(cfg.redisConn))
		if cfg.cacheTTL > 0 {
			store = storage.NewCache(adapter, rc, cfg.sheet, cfg.cacheTTL)
		}
		// every instance, this one included, hears its own changes through the relay
		changes = notify.NewRedisPublisher(rc, cfg.changesChannel)
		go notify.Relay(ctx, rc, cfg.changesChannel, hub)
	}
	if cfg.changesQueue != "" {
		qp, err := notify.NewQueuePublisher(cfg.connStr, cfg.changesQueue)
		if err != nil {
			log.Fatalf("queue: %v", err)
		}
		changes = notify.Multi{changes, qp}
	}

	logger := log.New()
	logger.SetLevel(log.GetLevel())
	otel.SetTracerProvider(newTracerProvider(logger))

	e := echo.New()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.Decompress())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.Register(e, store, changes, hub, logger)

	log.WithFields(log.Fields{"backend": cfg.backend, "sheet": cfg.sheet}).Info("item service starting")
	e.Logger.Fatal(e.Start(":" + cfg.port))
}

func openRowStore(ctx context.Context, cfg config) (storage.RowStore, error) {
	switch cfg.backend {
	case "tables":
		return storage.NewTableStore(cfg.connStr, cfg.rowsTable)
	case "memory":
		return storage.NewMemoryStore(cfg.sheet, storage.Header), nil
	default:
		var cred option.ClientOption
		if cfg.credentialsJSON != "" {
			cred = option.WithCredentialsJSON([]byte(cfg.credentialsJSON))
		} else {
			cred = option.WithCredentialsFile(cfg.credentialsPath)
		}
		return storage.NewSheetsStore(ctx, cfg.spreadsheetID, cred)
	}
}
