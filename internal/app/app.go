package app

import (
	"context"
	"fmt"

	"favr_backend/database"
	"favr_backend/internal/config"
	"favr_backend/internal/email"
	"favr_backend/internal/handlers"
	"favr_backend/internal/logger"
	"favr_backend/internal/middleware"
	"favr_backend/internal/routes"
	"favr_backend/internal/services"
	"favr_backend/internal/validator"
	"favr_backend/internal/verification"
	"favr_backend/internal/workers"
	"favr_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Schema migration failed", "error", err)
	}
	logger.Info("Database connected")

	ginRouter, container := SetupRouter(cfg, gormDB)

	worker := workers.NewTaskWorker(container.Tasks, container.Users)
	worker.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *services.ServiceContainer) {
	mailer := buildEmailProvider(cfg)

	// TODO: swap the mock gateways for the real SMS/WhatsApp and identity
	// providers once credentials are provisioned.
	var otp verification.OTPProvider = &MockOTPProvider{}
	var identity verification.IdentityProvider = &MockIdentityProvider{}

	wsManager := ws.NewManager()
	go wsManager.Run()
	wsHandler := ws.NewWebSocketHandler(wsManager)

	container := services.NewServiceContainer(gormDB, mailer, otp, identity, wsManager)
	appHandlers := handlers.NewAppHandlers(container, validator.New())

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	return ginRouter, container
}

func buildEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured; using the mock email provider")
		return &MockEmailProvider{}
	}
	return email.NewSMTPProvider(email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
