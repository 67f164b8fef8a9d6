package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/freddywood17/team-racing-app/config"
	"github.com/freddywood17/team-racing-app/db"
	"github.com/freddywood17/team-racing-app/handlers"
	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/localstore"
	"github.com/freddywood17/team-racing-app/repositories"
	api "github.com/freddywood17/team-racing-app/routes"
	"github.com/freddywood17/team-racing-app/services"
	"github.com/freddywood17/team-racing-app/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Device-local store (drafts and locked submission copies)
	deviceStore, err := localstore.NewBoltStore(cfg.LocalStorePath)
	if err != nil {
		logger.Error("failed to open local store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := deviceStore.Close(); err != nil {
			logger.Error("failed to close local store", slog.Any("error", err))
		}
	}()
	logger.Info("local store opened", slog.String("path", cfg.LocalStorePath))

	// Archive uploader (Cloudflare R2) — optional
	var uploader storage.ArchiveUploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize archive uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("archive uploader initialized")
	} else {
		logger.Info("archive uploader disabled (no R2 configuration)")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.AdminPasswordHash)
	competitionService := services.NewCompetitionService(competitionRepo, matchRepo)
	teamService := services.NewTeamService(teamRepo, deviceStore)
	draftService := services.NewDraftService(matchRepo, deviceStore)
	leaderboardService := services.NewLeaderboardService(submissionRepo, resultRepo)
	submissionService := services.NewSubmissionService(
		competitionRepo,
		teamRepo,
		submissionRepo,
		deviceStore,
		leaderboardService,
		wsHub,
		uploader,
		logger,
	)
	resultsService := services.NewResultsService(
		matchRepo,
		resultRepo,
		leaderboardService,
		wsHub,
		logger,
	)
	logger.Info("Services initialized")

	// Планировщик: объявление прошедших дедлайнов и периодическая рассылка
	// таблицы лидеров для переподключившихся клиентов.
	scheduler := cron.New()
	deadlineWatcher := services.NewDeadlineWatcher(competitionRepo, wsHub, logger)
	_, err = scheduler.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := deadlineWatcher.Check(ctx, time.Now()); err != nil {
			logger.Error("scheduler: deadline check failed", slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Error("failed to register deadline watcher", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = scheduler.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		comps, err := competitionRepo.ListAll(ctx)
		if err != nil {
			logger.Error("scheduler: failed to list competitions", slog.Any("error", err))
			return
		}
		for _, comp := range comps {
			rows, err := leaderboardService.Rank(ctx, comp.ID)
			if err != nil {
				logger.Error("scheduler: failed to recompute leaderboard",
					slog.String("competition_id", comp.ID), slog.Any("error", err))
				continue
			}
			wsHub.BroadcastToRoom(live.RoomID(comp.ID), live.Message{
				Type:          live.EventLeaderboardUpdated,
				Payload:       rows,
				CompetitionID: comp.ID,
			})
		}
	})
	if err != nil {
		logger.Error("failed to register leaderboard rebroadcast", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("Scheduler started")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	competitionHandler := handlers.NewCompetitionHandler(competitionService)
	teamHandler := handlers.NewTeamHandler(teamService)
	draftHandler := handlers.NewDraftHandler(draftService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	resultHandler := handlers.NewResultHandler(resultsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		competitionHandler,
		teamHandler,
		draftHandler,
		submissionHandler,
		leaderboardHandler,
		resultHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
