package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/config"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/logger"

	"go.uber.org/zap"
)

func main() {
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

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}
	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(model.All()...); err != nil {
		zlog.Fatal("auto migrate failed", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog)
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	stockRepo := repository.NewStockRepo(db)
	historyRepo := repository.NewStockHistoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	dashRepo := repository.NewDashboardRepo(db)
	cartRepo := repository.NewCartRepo(db)
	walletRepo := repository.NewWalletRepo(db)

	signer := jwt.NewSigner(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	stockService := service.NewStockService(db, stockRepo, historyRepo, wsHub, zlog)
	walletService := service.NewWalletService(db, walletRepo, wsHub, zlog)
	orderService := service.NewOrderService(db, orderRepo, productRepo, stockService, wsHub, zlog, cfg.DefaultDiscountPercent,
		service.WithWallet(walletService))
	cartService := service.NewCartService(db, cartRepo, productRepo, orderService, walletService, zlog)
	productService := service.NewProductService(productRepo, stockRepo, wsHub, zlog)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userRepo, signer, wsHub, zlog)
	dashService := service.NewDashboardService(historyRepo, dashRepo)

	// 5. Seed admin user
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	created, err := userService.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword)
	cancel()
	if err != nil {
		zlog.Fatal("seed admin failed", zap.Error(err))
	}
	if created {
		zlog.Info("default admin created", zap.String("email", cfg.AdminEmail))
	}

	// 6. Setup Fiber
	app := handler.NewApp(true)

	// 7. Routes
	handler.RegisterRoutes(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Stock:     handler.NewStockHandler(stockService),
		Product:   handler.NewProductHandler(productService),
		Order:     handler.NewOrderHandler(orderService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Cart:      handler.NewCartHandler(cartService),
		Wallet:    handler.NewWalletHandler(walletService),
	}, middleware.RequireAuth(signer, userRepo))
	ws.Mount(app, wsHub)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()
	zlog.Info("server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()

	zlog.Info("server exited")
}
