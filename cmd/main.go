package main

import (
	"context"
	"errors"
	"log"
	"os"

	"skillforge-backend/config"
	httpDelivery "skillforge-backend/internal/delivery/http"
	"skillforge-backend/internal/domain"
	"skillforge-backend/internal/repository"
	"skillforge-backend/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Connect to databases
	db := config.ConnectDB()
	postgres := db.PG
	mongo := db.Mongo

	// Auto migrate
	if err := config.AutoMigrate(postgres); err != nil {
		log.Fatal("Migration failed:", err)
	}
	if err := repository.EnsureIndexes(context.Background(), mongo); err != nil {
		log.Fatal("Index creation failed:", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(postgres)
	courseRepo := repository.NewCourseRepository(postgres)
	feedbackRepo := repository.NewFeedbackRepository(postgres)
	moduleRepo := repository.NewCourseModuleRepository(mongo)
	enrollmentRepo := repository.NewEnrollmentRepository(mongo)
	eventRepo := repository.NewWatchEventRepository(mongo)

	var analyticsCache domain.AnalyticsCache
	if db.Redis != nil {
		analyticsCache = repository.NewAnalyticsCache(db.Redis, logger)
	}

	// Initialize usecases
	gate := usecase.NewAccessGate(enrollmentRepo, courseRepo)
	authUsecase := usecase.NewAuthUsecase(userRepo, logger)
	courseUsecase := usecase.NewCourseUsecase(courseRepo, moduleRepo, enrollmentRepo, userRepo, logger)
	progressUsecase := usecase.NewProgressUsecase(gate, enrollmentRepo, moduleRepo, eventRepo, logger)
	certUsecase := usecase.NewCertificateUsecase(enrollmentRepo, feedbackRepo, courseRepo)
	feedbackUsecase := usecase.NewFeedbackUsecase(gate, feedbackRepo)
	analyticsUsecase := usecase.NewAnalyticsUsecase(gate, courseRepo, feedbackRepo, eventRepo, analyticsCache, logger)
	dashboardUsecase := usecase.NewDashboardUsecase(userRepo, courseRepo, moduleRepo, enrollmentRepo, feedbackRepo, certUsecase, logger)
	statsUsecase := usecase.NewStatsUsecase(courseRepo, feedbackRepo, logger)

	// Seed demo users
	seedUsers(authUsecase)

	// Hourly refresh of the denormalized course stats
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if err := statsUsecase.RefreshCourseStats(context.Background()); err != nil {
			logger.Error("course stats refresh failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("Failed to schedule stats refresh:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers and router
	apiHandler := httpDelivery.NewHandler(
		authUsecase,
		courseUsecase,
		progressUsecase,
		certUsecase,
		feedbackUsecase,
		analyticsUsecase,
		dashboardUsecase,
	)
	router := httpDelivery.InitRouter(apiHandler)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func seedUsers(authUsecase domain.AuthUsecase) {
	// Student
	student := &domain.User{
		Name:     "Demo Student",
		Email:    "student@skillforge.com",
		Password: "password123",
		Role:     domain.RoleStudent,
	}
	err := authUsecase.Register(context.Background(), student)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		log.Printf("Failed to seed student: %v", err)
	}

	// Instructor
	instructor := &domain.User{
		Name:     "Demo Instructor",
		Email:    "instructor@skillforge.com",
		Password: "password123",
		Role:     domain.RoleInstructor,
	}
	err = authUsecase.Register(context.Background(), instructor)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		log.Printf("Failed to seed instructor: %v", err)
	}
}
