package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/handler"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/metrics"
	"github.com/yanex66/vouchly/internal/repository"
	"github.com/yanex66/vouchly/internal/service"
	"github.com/yanex66/vouchly/internal/session"
	"github.com/yanex66/vouchly/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.Server.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	// Connect to database
	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	// Create services
	settings := service.NewLedgerSettings(repo, cfg.Ledger)
	userSvc := service.NewUserService(repo, cfg.Auth)
	referralSvc := service.NewReferralService(repo, settings)
	ledgerSvc := service.NewLedgerService(repo)
	payoutSvc := service.NewPayoutService(repo, settings)
	reviewSvc := service.NewReviewService(repo)
	catalogSvc := service.NewCatalogService(repo)
	dashboardSvc := service.NewDashboardService(repo)
	adminSvc := service.NewAdminService(repo)

	// Signup referrals are recorded by the user service
	userSvc.SetReferralService(referralSvc)

	// Set dependencies on admin service (to avoid circular dependency)
	adminSvc.SetPayoutService(payoutSvc)
	adminSvc.SetReviewService(reviewSvc)
	adminSvc.SetReferralService(referralSvc)
	adminSvc.SetCatalogService(catalogSvc)

	// Create Telegram bot for operator notifications
	var bot *telegram.Bot
	if cfg.Telegram.BotToken != "" {
		bot, err = telegram.NewBot(cfg, payoutSvc)
		if err != nil {
			log.Warn("failed to create telegram bot", zap.Error(err))
		} else {
			payoutSvc.SetNotifier(bot)
			log.Info("telegram bot initialized", zap.String("username", bot.GetBotUsername()))
		}
	}

	sessions, storage, err := session.New(cfg)
	if err != nil {
		log.Fatal("failed to connect to session storage", zap.Error(err))
	}
	if storage != nil {
		defer storage.Close()
	}

	// Create handlers
	h := handler.New(cfg, sessions, handler.Services{
		User:      userSvc,
		Catalog:   catalogSvc,
		Review:    reviewSvc,
		Referral:  referralSvc,
		Ledger:    ledgerSvc,
		Payout:    payoutSvc,
		Dashboard: dashboardSvc,
	})
	adminHandler := handler.NewAdminHandler(adminSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.Server.AllowOrigins != "*",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handler.SetupRoutes(app, h, adminHandler, userSvc.Issuer(), adminSvc)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Telegram bot long polling
	if bot != nil {
		go bot.StartPolling(ctx)
		log.Info("telegram bot started with long polling")
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		cancel()
		_ = app.Shutdown()
	}()

	// Start server
	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
