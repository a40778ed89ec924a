package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chart-analyzer/internal/analyzer/config"
	delivery "chart-analyzer/internal/analyzer/delivery/http"
	_ "chart-analyzer/internal/analyzer/docs"
	"chart-analyzer/internal/analyzer/repository"
	"chart-analyzer/internal/analyzer/service"
	"chart-analyzer/pkg/common"
	"chart-analyzer/pkg/logger"
	"chart-analyzer/pkg/telegram"
	"chart-analyzer/pkg/tracing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the chart analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Chart Analysis Service",
		logger.Field("name", cfg.App.Name),
		logger.Field("provider", cfg.AI.Provider),
	)

	shutdownTracing, err := tracing.Init(cfg.Tracing.Enabled, cfg.Tracing.ServiceName, cfg.App.Version)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", logger.ErrorField(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Warn("Failed to flush traces", logger.ErrorField(err))
		}
	}()

	if strings.TrimSpace(cfg.APIKey()) == "" {
		appLogger.Warn("No API key configured for the inference provider; every analysis will fail",
			logger.Field("provider", cfg.AI.Provider))
	}

	aiRepo := repository.WithTracing(newAIRepository(ctx, cfg, appLogger), cfg.AI.Provider, appLogger)

	var telegramBot telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramBot, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Warn("Failed to initialize Telegram client, reports will not be forwarded", logger.ErrorField(err))
			telegramBot = nil
		}
	}

	analyzerSvc := service.NewChartAnalyzerService(cfg, appLogger, aiRepo, telegramBot)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = delivery.ErrorHandler(appLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLogger.Info("HTTP request",
				logger.StringField("request_id", v.RequestID),
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.Field("latency", v.Latency),
			)
			return nil
		},
	}))

	analyzeHandler := delivery.NewAnalyzeHandler(cfg, analyzerSvc, appLogger)
	analyzeHandler.RegisterRoutes(e.Group(common.RouteAPIGroup))
	delivery.RegisterHealthRoute(e)

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// newAIRepository builds the repository of the configured provider. A client
// that cannot be built yields a repository that fails every request.
func newAIRepository(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) repository.AIRepository {
	switch cfg.AI.Provider {
	case common.AIProviderGemini:
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			appLogger.Error("Failed to initialize Gemini client", logger.ErrorField(err))
			return repository.NewUnavailableAIRepository(err)
		}
		repo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Error("Failed to initialize Gemini repository", logger.ErrorField(err))
			return repository.NewUnavailableAIRepository(err)
		}
		return repo
	case common.AIProviderOpenRouter:
		return repository.NewOpenRouterRepository(cfg, appLogger)
	case common.AIProviderAnthropic, "":
		return repository.NewClaudeAIRepository(cfg, appLogger)
	default:
		err := fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
		appLogger.Error("Invalid configuration", logger.ErrorField(err))
		return repository.NewUnavailableAIRepository(err)
	}
}

// @title Chart Analyzer API
// @version 1.0
// @description Uploads trading chart screenshots to a multimodal model and returns its analysis.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
