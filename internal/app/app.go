package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/auth"
	"github.com/caliberhq/question-bank/internal/config"
	"github.com/caliberhq/question-bank/internal/delivery/httpd"
	"github.com/caliberhq/question-bank/internal/repository"
	"github.com/caliberhq/question-bank/internal/service"
	"github.com/caliberhq/question-bank/internal/service/intake"
	"github.com/caliberhq/question-bank/internal/service/integration"
	"github.com/caliberhq/question-bank/internal/service/storage"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	publisher integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	objectStorage, err := storage.NewMinIOStorage(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	// A missing broker only disables the drafts-created notification, so
	// the service starts without it.
	publisher, err := integration.NewRabbitMQPublisher(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ publisher, continuing without events")
		publisher = nil
	}

	userRepo := repository.NewUserRepository(db, log)
	questionRepo := repository.NewQuestionRepository(db, log)
	courseRepo := repository.NewCourseRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	enrollmentRepo := repository.NewEnrollmentRepository(db, log)
	progressRepo := repository.NewProgressRepository(db, log)

	userService := service.NewUserService(userRepo, log)
	questionService := service.NewQuestionService(questionRepo, objectStorage, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, userRepo, log)
	courseService := service.NewCourseService(courseRepo, assignmentRepo, userRepo, enrollmentService, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, userRepo, enrollmentService, log)
	progressService := service.NewProgressService(progressRepo, assignmentRepo, enrollmentService, log)
	intakeService := service.NewIntakeService(
		questionRepo,
		objectStorage,
		intake.NewPDFExtractor(),
		intake.NewChunkingGenerator(),
		publisher,
		cfg.Intake,
		log,
	)
	fileService := service.NewFileService(objectStorage, cfg.Intake, log)

	handler := httpd.NewHandler(
		userService,
		questionService,
		courseService,
		assignmentService,
		progressService,
		intakeService,
		fileService,
		log,
	)

	authMiddleware := auth.NewMiddleware(
		auth.NewJWTResolver(cfg.Auth.JWTSecret),
		userService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router, authMiddleware.Handler)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:    server,
		logger:    log,
		config:    cfg,
		db:        db,
		publisher: publisher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting question bank service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down question bank service...")

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return a.server.Shutdown(ctx)
}
