package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type config struct {
	port    string
	backend string
	sheet   string

	spreadsheetID   string
	credentialsJSON string
	credentialsPath string

	connStr   string
	rowsTable string

	redisConn      string
	cacheTTL       time.Duration
	changesChannel string
	changesQueue   string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfig() (config, error) {
	cfg := config{
		port:            envOr("PORT", "3000"),
		backend:         strings.ToLower(envOr("STORE_BACKEND", "sheets")),
		sheet:           envOr("SHEET_NAME", "Sheet1"),
		spreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		credentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		credentialsPath: os.Getenv("GOOGLE_CREDENTIALS_PATH"),
		connStr:         os.Getenv("STORAGE_CONNECTION_STRING"),
		rowsTable:       os.Getenv("ROWS_TABLE"),
		redisConn:       os.Getenv("REDIS_CONNECTION_STRING"),
		changesChannel:  envOr("CHANGES_CHANNEL", "items-changed"),
		changesQueue:    os.Getenv("CHANGES_QUEUE"),
	}

	switch cfg.backend {
	case "sheets":
		if cfg.spreadsheetID == "" {
			return cfg, errors.New("missing GOOGLE_SPREADSHEET_ID")
		}
		if cfg.credentialsJSON == "" && cfg.credentialsPath == "" {
			return cfg, errors.New("missing Google credentials")
		}
	case "tables":
		if cfg.connStr == "" || cfg.rowsTable == "" {
			return cfg, errors.New("missing storage config")
		}
	case "memory":
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.backend)
	}

	if v := os.Getenv("ITEMS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid ITEMS_CACHE_TTL %q", v)
		}
		cfg.cacheTTL = d
	}
	if cfg.cacheTTL > 0 && cfg.redisConn == "" {
		return cfg, errors.New("ITEMS_CACHE_TTL requires REDIS_CONNECTION_STRING")
	}
	if cfg.changesQueue != "" && cfg.connStr == "" {
		return cfg, errors.New("CHANGES_QUEUE requires STORAGE_CONNECTION_STRING")
	}
	return cfg, nil
}

// redisOptions accepts a redis:// URL or an Azure style
// "host:port,password=...,ssl=True" connection string.
func redisOptions(conn string) *redis.Options {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
