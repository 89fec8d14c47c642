package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/config"
	"github.com/sasanhatam/Damonservice/internal/app/dsn"
	"github.com/sasanhatam/Damonservice/internal/app/handler"
	"github.com/sasanhatam/Damonservice/internal/app/middleware"
	"github.com/sasanhatam/Damonservice/internal/app/redis"
	"github.com/sasanhatam/Damonservice/internal/app/repository"
	"github.com/sasanhatam/Damonservice/internal/app/storage"
	"github.com/sasanhatam/Damonservice/internal/pkg"
)

// StartServer собирает все зависимости и запускает HTTP-сервер
func StartServer() {
	logrus.Info("Starting server")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	repo, err := newRepository(cfg)
	if err != nil {
		logrus.Fatalf("Error initializing repository: %v", err)
	}
	defer repo.Close()

	if err := repository.EnsureSeedData(repo); err != nil {
		logrus.Fatalf("Error seeding data: %v", err)
	}

	// Redis опционален: без него logout не ведет черный список токенов
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisClient, err = redis.New(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logrus.Warnf("Redis unavailable, JWT blacklist disabled: %v", err)
			redisClient = nil
		}
	}

	// MinIO опционален: без него загрузка изображений недоступна
	var minioClient *storage.MinIOClient
	if cfg.Minio.Endpoint != "" {
		minioClient, err = storage.NewMinIOClient(
			cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
			cfg.Minio.Bucket, cfg.Minio.UseSSL,
		)
		if err != nil {
			logrus.Warnf("MinIO unavailable, image upload disabled: %v", err)
			minioClient = nil
		}
	}

	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(repo, minioClient, authHandler)
	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiHandler.RegisterAPIRoutes(r, authMiddleware)

	app := pkg.NewApp(cfg, r)
	app.RunApp()
}

func newRepository(cfg *config.Config) (repository.Repository, error) {
	switch cfg.Storage.Mode {
	case "postgres":
		return repository.NewPostgres(dsn.FromEnv())
	default:
		return repository.NewFile(cfg.Storage.Path)
	}
}
