package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/inkwell-ed/inkwell-api/internal/config"
	"github.com/inkwell-ed/inkwell-api/internal/database"
	"github.com/inkwell-ed/inkwell-api/internal/handler"
	"github.com/inkwell-ed/inkwell-api/internal/middleware"
	"github.com/inkwell-ed/inkwell-api/internal/repository"
	"github.com/inkwell-ed/inkwell-api/internal/router"
	"github.com/inkwell-ed/inkwell-api/internal/service"
	"github.com/inkwell-ed/inkwell-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	modelClient, err := ai.NewClient(ai.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		BaseURL:     cfg.GeminiBaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: float32(cfg.Temperature),
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create model client: %v", err)
	}

	generator := ai.NewRetryingGenerator(modelClient, ai.RetryConfig{
		MaxRetries:       cfg.MaxRetries,
		InitialDelay:     cfg.InitialRetryDelay,
		MaxDelay:         cfg.MaxRetryDelay,
		RetryAfterBuffer: cfg.RetryAfterBuffer,
	}, logger)

	// One limiter for the whole process keeps concurrent batches inside the
	// account-wide model call budget.
	limiter := rate.NewLimiter(rate.Every(cfg.ModelCallInterval), 1)

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	progressStore := service.NewRedisProgressStore(redisClient, cfg.ProgressTTL)

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, validate, logger)
	gradingService := service.NewGradingService(assignmentRepo, submissionRepo, feedbackRepo, generator, progressStore, limiter, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
