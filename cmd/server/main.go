package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"accounting/internal/app"
	"accounting/internal/config"
	"accounting/internal/db"
	"accounting/internal/handlers"
	"accounting/internal/logger"
	"accounting/internal/migration"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	database, err := db.Connect(cfg.DatabaseURL, cfg.DB)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	services := app.New(database, log)
	handler := handlers.New(cfg, handlers.Deps{
		Accounts:  services.Accounts,
		Journal:   services.Journal,
		Payments:  services.Payments,
		Documents: services.Documents,
		Reports:   services.Reports,
		Audit:     services.Audit,
		Hub:       services.Hub,
		Log:       log.Named("http"),
	})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("accounting API listening", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}

func migrateUp(cfg config.Config, log *zap.Logger) error {
	m, err := migration.Open(cfg.DatabaseURL, cfg.MigrationsPath, log.Named("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
