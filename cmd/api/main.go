package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"planmarket/internal/adapter/api"
	"planmarket/internal/adapter/api/handler"
	apimiddleware "planmarket/internal/adapter/api/middleware"
	"planmarket/internal/adapter/api/router"
	"planmarket/internal/adapter/repository"
	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/service"
	"planmarket/internal/infrastructure/firebase"
	"planmarket/internal/infrastructure/metrics"
	"planmarket/internal/infrastructure/ratelimit"
	"planmarket/internal/infrastructure/storage"
	"planmarket/internal/infrastructure/websocket"
	"planmarket/internal/usecase"
	"planmarket/pkg/config"
	"planmarket/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Logger().Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opt option.ClientOption
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	} else {
		if _, err := os.Stat(cfg.FirebaseCredentialsFile); os.IsNotExist(err) {
			logger.Logger().Fatalf("Service account file does not exist: %s", cfg.FirebaseCredentialsFile)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseCredentialsFile)
		opt = option.WithCredentialsFile(cfg.FirebaseCredentialsFile)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		logger.Logger().Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Logger().Fatalf("Failed to initialize Firebase Auth: %v", err)
	}
	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseAPIKey)

	checks := map[string]handler.HealthCheck{}

	var repos *repository.Repositories
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := repository.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns)
		if err != nil {
			logger.Logger().Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		if err := repository.ApplySchema(ctx, db); err != nil {
			logger.Logger().Fatalf("Failed to apply schema: %v", err)
		}
		if err := repository.SeedCategories(ctx, db, entity.DefaultCategories()); err != nil {
			logger.Logger().Fatalf("Failed to seed categories: %v", err)
		}
		checks["postgres"] = pinger(db)
		repos = repository.NewPostgresRepositories(db)

	case config.DriverFirestore:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			logger.Logger().Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		if err := repository.SeedFirestoreCategories(ctx, firestoreClient, entity.DefaultCategories()); err != nil {
			logger.Logger().Fatalf("Failed to seed categories: %v", err)
		}
		repos = repository.NewFirestoreRepositories(firestoreClient)

	case config.DriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		repos = repository.NewMemoryRepositories(entity.DefaultCategories()...)

	default:
		logger.Logger().Fatalf("Unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	var fileStorage service.FileStorage
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			logger.Logger().Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		fileStorage = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set; uploads are kept in memory")
		fileStorage = storage.NewMemoryStorage("http://localhost:" + cfg.ServerPort + "/files")
	}

	m := metrics.New()

	hub := websocket.NewHub(m)
	go hub.Run(ctx)

	limiter := ratelimit.NewRateLimiter(ratelimit.Policy{
		Limit: rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	})
	go limiter.Run(ctx, 10*time.Minute, time.Hour)

	commission := service.NewCommissionCalculator(cfg.CommissionRate)

	notificationUseCase := usecase.NewNotificationUseCase(repos.Notifications, hub)
	catalogUseCase := usecase.NewCatalogUseCase(repos.Products, repos.Categories, repos.Profiles, repos.Reviews, repos.Orders, fileStorage, m, cfg.MaxPlanFileBytes)
	orderUseCase := usecase.NewOrderUseCase(repos.Orders, repos.Products, repos.Profiles, catalogUseCase, commission, notificationUseCase, limiter, m)
	reviewUseCase := usecase.NewReviewUseCase(repos.Reviews, repos.Orders, repos.Products, repos.Profiles, notificationUseCase, m)
	profileUseCase := usecase.NewProfileUseCase(repos.Profiles, repos.Products, fileStorage, cfg.MaxAvatarBytes)
	chatUseCase := usecase.NewChatUseCase(repos.Chats, repos.Products, repos.Profiles, notificationUseCase, hub, limiter, m)
	adminUseCase := usecase.NewAdminUseCase(repos.Orders, repos.Products, repos.Profiles)
	authUseCase := usecase.NewAuthUseCase(repos.Profiles, firebaseAuthClient)

	handler.Setup(handler.UseCases{
		Auth:          authUseCase,
		Profiles:      profileUseCase,
		Catalog:       catalogUseCase,
		Orders:        orderUseCase,
		Reviews:       reviewUseCase,
		Chats:         chatUseCase,
		Notifications: notificationUseCase,
		Admin:         adminUseCase,
	}, hub, cfg.AllowedOrigins)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(m.Middleware())
	e.Validator = api.NewValidator()

	router.Setup(e, router.Deps{
		Auth:    apimiddleware.NewAuthMiddleware(firebaseAuthClient),
		Roles:   apimiddleware.NewRoleMiddleware(repos.Profiles),
		Limiter: limiter,
		Health:  handler.NewHealthHandler(checks).CheckHealth,
		Metrics: m.Handler(),
	})

	go func() {
		logger.Info("Starting server on port %s (store: %s)", cfg.ServerPort, cfg.StoreDriver)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Logger().Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func pinger(db *sql.DB) handler.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
