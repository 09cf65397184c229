package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"himakeu/pkg/reconcile"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	stores, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("failed to open stores", zap.Error(err))
	}
	stores.migrate(log)
	ensureUploadDirs(cfg.Upload.Base, log)

	app := newApplication(cfg, log, stores)
	seedAdmin(app.directory, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	app.setupRoutes(r)

	// background consistency pass over the split stores
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := reconcile.New(app.ledger, app.directory, cfg.Upload.Base, log)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Reconcile.Cron, func() {
		if _, err := rec.Run(rootCtx); err != nil {
			log.Error("reconcile pass failed", zap.Error(err))
		}
	}); err != nil {
		log.Warn("invalid reconcile schedule, pass disabled",
			zap.String("cron", cfg.Reconcile.Cron), zap.Error(err))
	}
	scheduler.Start()
	if cfg.Reconcile.Watch {
		go func() {
			if err := rec.Watch(rootCtx); err != nil && rootCtx.Err() == nil {
				log.Error("receipts watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("postgres", cfg.Postgres.Database),
			zap.String("mysql", cfg.MySQL.Database),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
