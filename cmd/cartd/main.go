package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopcart/internal/config"
	"shopcart/internal/http/handlers"
	applog "shopcart/internal/log"
	"shopcart/internal/remote"
	"shopcart/internal/repos"
	"shopcart/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}
	if !applog.SetLevel(cfg.LogLevel) {
		log.Printf("[warn] unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}
	defer applog.Sync()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	kv := repos.NewKVRepo(db)

	var endpoint remote.CartService
	if cfg.RemoteURL != "" {
		endpoint = remote.NewHTTPClient(cfg.RemoteURL, cfg.RemoteTimeout)
		log.Printf("[remote] cart endpoint -> %s", cfg.RemoteURL)
	} else {
		endpoint = remote.NewFake(remote.DemoCatalog()...)
		log.Printf("[remote] cart endpoint -> in-memory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := services.NewRegistry(ctx, endpoint, kv, services.RegistryOptions{
		Timeout:     cfg.RemoteTimeout,
		IdleTimeout: cfg.IdleTimeout,
		MaxCarts:    cfg.MaxCarts,
	})
	defer reg.Close()

	deps := handlers.NewDeps(cfg, reg, kv)
	app := handlers.NewApp(deps, handlers.AppOptions{AccessLogs: true})

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[server] %v", err)
	}
}
