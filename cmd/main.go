package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"autolot/internal/handler"
	"autolot/internal/middleware"
	"autolot/internal/notify"
	"autolot/internal/repositories"
	"autolot/internal/router"
	"autolot/internal/service"
	"autolot/internal/session"
	"autolot/pkg/database"
	"autolot/pkg/envconfig"
	"autolot/pkg/flags"
	"autolot/pkg/logger"
	"autolot/pkg/shutdownsetup"
)

func main() {
	// Parse command-line flags
	flagConfig := flags.Parse()

	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(flagConfig.EnvFile)

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting AutoLot application",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	dbConfig := envconfig.LoadDatabaseConfig()

	db, err := database.NewConnection(dbConfig, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to establish database connection", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := db.HealthCheck(); err != nil {
		appLogger.Error("Database health check failed", "error", err)
	} else {
		appLogger.Info("Database health check passed")
	}

	// Repositories
	carRepo := repositories.NewCarRepository(appLogger, db)
	orderRepo := repositories.NewOrderRepository(appLogger, db)
	userRepo := repositories.NewUserRepository(appLogger, db)

	// Notification channels come alive only when configured
	dispatcher := notify.NewDispatcher(appLogger,
		notify.NewEmailChannel(notify.EmailConfig{
			Host:      envconfig.GetEnv("SMTP_HOST", ""),
			Port:      envconfig.GetEnvInt("SMTP_PORT", 587),
			Username:  envconfig.GetEnv("SMTP_USERNAME", ""),
			Password:  envconfig.GetEnv("SMTP_PASSWORD", ""),
			From:      envconfig.GetEnv("SMTP_FROM", ""),
			Recipient: envconfig.GetEnv("NOTIFY_EMAIL", ""),
		}),
		notify.NewTelegramChannel(notify.TelegramConfig{
			BotToken: envconfig.GetEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   envconfig.GetEnv("TELEGRAM_CHAT_ID", ""),
		}),
		notify.NewSMSChannel(notify.SMSConfig{
			WebhookURL: envconfig.GetEnv("SMS_WEBHOOK_URL", ""),
			APIKey:     envconfig.GetEnv("SMS_API_KEY", ""),
			Recipient:  envconfig.GetEnv("NOTIFY_PHONE", ""),
		}),
	)

	// Services
	carService := service.NewCarService(carRepo, appLogger)
	orderService := service.NewOrderService(orderRepo, carRepo, dispatcher, appLogger)
	authService := service.NewAuthService(userRepo, appLogger)
	statsService := service.NewStatsService(carRepo, orderRepo, userRepo, appLogger)

	sessions := session.NewManager(envconfig.GetEnv("SESSION_SECRET", "autolot-dev-secret"))
	uploadDir := envconfig.GetEnv("UPLOAD_DIR", "uploads")

	// Handlers
	carHandler := handler.NewCarHandler(carService, appLogger)
	orderHandler := handler.NewOrderHandler(orderService, appLogger)
	authHandler := handler.NewAuthHandler(authService, sessions, appLogger)
	adminHandler := handler.NewAdminHandler(carService, orderService, authService, statsService, uploadDir, appLogger)

	mux := router.New(router.Config{
		Cars:      carHandler,
		Orders:    orderHandler,
		Auth:      authHandler,
		Admin:     adminHandler,
		UploadDir: uploadDir,
		Health:    db.HealthCheck,
	})

	rateLimiter := middleware.NewRateLimiter(
		float64(envconfig.GetEnvInt("RATE_LIMIT_PER_SECOND", 10)),
		envconfig.GetEnvInt("RATE_LIMIT_BURST", 20),
	)
	defer rateLimiter.Stop()

	httpHandler := appLogger.HTTPMiddleware(
		rateLimiter.Handler(
			middleware.WithIdentity(sessions)(mux)))

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum := 8080 + i + 1
				port = fmt.Sprintf("%d", portNum)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}
