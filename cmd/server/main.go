package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/donkihote1489/site-cost-manager/internal/auth"
	"github.com/donkihote1489/site-cost-manager/internal/config"
	httpapi "github.com/donkihote1489/site-cost-manager/internal/interfaces/http"
	"github.com/donkihote1489/site-cost-manager/internal/notification"
	"github.com/donkihote1489/site-cost-manager/internal/report"
	"github.com/donkihote1489/site-cost-manager/internal/repository"
	"github.com/donkihote1489/site-cost-manager/internal/workflow"
	"github.com/donkihote1489/site-cost-manager/pkg/database"
	"github.com/donkihote1489/site-cost-manager/pkg/utils"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting site cost manager",
		zap.Int("port", cfg.Server.Port))

	if cfg.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	stepRepo := repository.NewStepRepository(db, logger)

	var notifier notification.Notifier = notification.Noop{}
	if cfg.Lark.Enabled {
		notifier = notification.NewLarkNotifier(notification.LarkConfig{
			AppID:           cfg.Lark.AppID,
			AppSecret:       cfg.Lark.AppSecret,
			DepartmentChats: cfg.Lark.DepartmentChats,
		}, logger)
	}

	engine := workflow.NewEngine(stepRepo, notifier, logger)

	users := make([]auth.User, 0, len(cfg.Auth.Users))
	for _, u := range cfg.Auth.Users {
		users = append(users, auth.User{
			Username:   u.Username,
			Password:   u.Password,
			Department: u.Department,
		})
	}
	identity := auth.NewProvider(users, cfg.Auth.MaxLoginAttempts, logger)

	exporter := report.NewExporter(cfg.Report.OutputDir, logger)

	handlers := httpapi.NewHandlers(engine, stepRepo, identity, exporter, logger)
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
