package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/config"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	"github.com/yourusername/redweb-api/internal/handler"
	"github.com/yourusername/redweb-api/internal/middleware"
	"github.com/yourusername/redweb-api/internal/repository/memory"
	pgRepo "github.com/yourusername/redweb-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/redweb-api/internal/repository/redis"
	"github.com/yourusername/redweb-api/internal/service"
	"github.com/yourusername/redweb-api/pkg/auth"
	"github.com/yourusername/redweb-api/pkg/database"
	"github.com/yourusername/redweb-api/pkg/logger"
)

// storage - набор репозиториев выбранного драйвера
type storage struct {
	users      repository.UserRepository
	codes      repository.VerificationCodeRepository
	characters repository.CharacterRepository
	scenes     repository.SceneRepository
	close      func()
}

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("configuration loaded",
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("email_provider", cfg.Email.Provider))

	store, err := newStorage(cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	cacheRepo, closeCache, err := newCache(cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	emailService, err := newEmailService(cfg.Email, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cacheRepo, log)
	if err != nil {
		return fmt.Errorf("failed to initialize JWTService: %w", err)
	}

	policy := service.CodePolicy{
		TTL:            cfg.Verification.CodeTTL,
		MaxAttempts:    cfg.Verification.MaxAttempts,
		ResendInterval: cfg.Verification.ResendInterval,
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(store.users, jwtService, log)
	if err != nil {
		return fmt.Errorf("failed to initialize AuthService: %w", err)
	}
	verificationService, err := service.NewEmailVerificationService(store.codes, cacheRepo, emailService, policy, log)
	if err != nil {
		return fmt.Errorf("failed to initialize EmailVerificationService: %w", err)
	}
	authService.SetEmailVerification(verificationService, cfg.Verification.RequireVerifiedEmail)

	resetService, err := service.NewPasswordResetService(store.users, cacheRepo, emailService, policy, log)
	if err != nil {
		return fmt.Errorf("failed to initialize PasswordResetService: %w", err)
	}
	characterService, err := service.NewCharacterService(store.characters)
	if err != nil {
		return fmt.Errorf("failed to initialize CharacterService: %w", err)
	}
	sceneService, err := service.NewSceneService(store.scenes, store.characters)
	if err != nil {
		return fmt.Errorf("failed to initialize SceneService: %w", err)
	}
	userService := service.NewUserService(store.users)

	// Инициализируем роутер Gin
	isProduction := gin.Mode() == gin.ReleaseMode
	router := gin.New()
	router.Use(middleware.RequestLogger(log), gin.Recovery())

	// В production не доверяем прокси-заголовкам, локально доверяем loopback
	trusted := []string{"127.0.0.1", "::1"}
	if isProduction {
		trusted = nil
	}
	if err := router.SetTrustedProxies(trusted); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var authLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limitCfg := middleware.DefaultAuthRateLimitConfig()
		limitCfg.MaxRequests = cfg.RateLimit.MaxRequests
		limitCfg.Window = cfg.RateLimit.Window
		authLimit = middleware.NewRateLimiter(cacheRepo, log).Limit(limitCfg)
	}

	handler.RegisterRoutes(router, handler.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Verification: handler.NewVerificationHandler(verificationService, log),
		Password:     handler.NewPasswordHandler(resetService, log),
		User:         handler.NewUserHandler(userService, log),
		Character:    handler.NewCharacterHandler(characterService, log),
		Scene:        handler.NewSceneHandler(sceneService, log),
	}, handler.RouteOptions{
		Auth:      middleware.NewAuthMiddleware(jwtService),
		AuthLimit: authLimit,
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}

// newStorage открывает PostgreSQL с миграциями или хранилище в памяти
func newStorage(cfg *config.Config, log *zap.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		mem := memory.NewStore()
		return &storage{
			users:      memory.NewUserRepo(mem),
			codes:      memory.NewVerificationCodeRepo(mem),
			characters: memory.NewCharacterRepo(mem),
			scenes:     memory.NewSceneRepo(mem),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgresDB(cfg.Database, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath, log); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	return &storage{
		users:      pgRepo.NewUserRepo(db),
		codes:      pgRepo.NewVerificationCodeRepo(db),
		characters: pgRepo.NewCharacterRepo(db),
		scenes:     pgRepo.NewSceneRepo(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// newCache подключает Redis, если он включен, иначе кеш в памяти процесса
func newCache(cfg *config.Config, log *zap.Logger) (repository.CacheRepository, func(), error) {
	if !cfg.Redis.Enabled {
		log.Warn("redis disabled, cooldowns and revocations are kept in process memory")
		return memory.NewCacheRepo(), func() {}, nil
	}

	client, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cacheRepo, err := redisRepo.NewCacheRepo(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to initialize CacheRepo: %w", err)
	}
	log.Info("connected to Redis", zap.String("mode", cfg.Redis.Mode))
	return cacheRepo, func() { _ = client.Close() }, nil
}

func newEmailService(cfg config.EmailConfig, log *zap.Logger) (service.EmailService, error) {
	switch cfg.Provider {
	case config.EmailProviderResend:
		return service.NewResendEmailService(cfg.ResendAPIKey, cfg.From)
	case config.EmailProviderSMTP:
		return service.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
	default:
		log.Warn("email provider is noop, codes are written to the log only")
		return service.NewNoopEmailService(log), nil
	}
}
