package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/config"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "account to reset (defaults to ADMIN_EMAIL)")
	password := flag.String("password", "", "new password (defaults to ADMIN_PASSWORD)")
	flag.Parse()

	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if *email == "" {
		*email = cfg.AdminEmail
	}
	if *password == "" {
		*password = cfg.AdminPassword
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}

	// 3. Update
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(repository.NewUserRepo(db))
	if err := users.OverridePassword(ctx, *email, *password, model.SystemActor); err != nil {
		zlog.Fatal("reset password failed", zap.String("email", *email), zap.Error(err))
	}

	zlog.Info("password reset, existing sessions revoked", zap.String("email", *email))
}
