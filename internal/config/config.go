package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	LogLevel      string
	RemoteURL     string
	RemoteTimeout time.Duration
	IdleTimeout   time.Duration
	MaxCarts      int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "shopcart.db"
	} // sqlite file holding the local product-slug cache
	logFile := os.Getenv("LOG_FILE")
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	// Empty REMOTE_URL runs against the in-memory cart endpoint.
	remote := os.Getenv("REMOTE_URL")

	timeout := 10 * time.Second
	if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		} else {
			log.Printf("[config] ignoring REMOTE_TIMEOUT=%q", v)
		}
	}
	// Carts idle this long are stopped and reload from the server on next use.
	idle := 30 * time.Minute
	if v := os.Getenv("CART_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			idle = d
		} else {
			log.Printf("[config] ignoring CART_IDLE_TIMEOUT=%q", v)
		}
	}
	maxCarts := 1000
	if v := os.Getenv("CART_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			maxCarts = n
		} else {
			log.Printf("[config] ignoring CART_MAX=%q", v)
		}
	}

	cfg := Config{
		Port:          port,
		DBDSN:         dsn,
		LogFile:       logFile,
		LogLevel:      logLevel,
		RemoteURL:     remote,
		RemoteTimeout: timeout,
		IdleTimeout:   idle,
		MaxCarts:      maxCarts,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s REMOTE_URL=%s REMOTE_TIMEOUT=%s CART_IDLE_TIMEOUT=%s CART_MAX=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.RemoteURL, cfg.RemoteTimeout, cfg.IdleTimeout, cfg.MaxCarts)
	return cfg
}
