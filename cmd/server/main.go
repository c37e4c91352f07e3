package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	deliveryhttp "github.com/emilykangdev/CanIParkHere/internal/delivery/http"
	"github.com/emilykangdev/CanIParkHere/internal/domain"
	"github.com/emilykangdev/CanIParkHere/internal/events"
	"github.com/emilykangdev/CanIParkHere/internal/repository/memory"
	"github.com/emilykangdev/CanIParkHere/internal/repository/postgres"
	redisrepo "github.com/emilykangdev/CanIParkHere/internal/repository/redis"
	"github.com/emilykangdev/CanIParkHere/internal/service"
	"github.com/emilykangdev/CanIParkHere/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Warning: Unknown timezone %q, falling back to UTC", cfg.Timezone)
		loc = time.UTC
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Dependency Injection: spot store
	var repo domain.DataRepository
	var reloader *service.Reloader

	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			log.Println("Running with built-in sample data")
			repo = memory.NewSampleStore()
		} else {
			defer pool.Close()
			log.Println("Connected to PostgreSQL")
			repo = postgres.NewPostgresRepository(pool)
		}
	case cfg.SpotDataCSV != "":
		store, err := memory.NewCSVStore(cfg.SpotDataCSV)
		if err != nil {
			log.Fatalf("Could not load spot data from %s: %v", cfg.SpotDataCSV, err)
		}
		log.Printf("Loaded spot data from %s", cfg.SpotDataCSV)
		repo = store

		if cfg.ReloadSchedule != "" {
			reloader, err = service.NewReloader(cfg.ReloadSchedule, store)
			if err != nil {
				log.Fatalf("Bad reload schedule: %v", err)
			}
			reloader.Start()
			defer reloader.Stop()
		}
	default:
		log.Println("No DATABASE_URL or PARKING_DATA_CSV set, using built-in sample data")
		repo = memory.NewSampleStore()
	}

	// Dependency Injection: session store
	var sessions domain.SessionStore
	if cfg.RedisURL != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Could not connect to Redis: %v", err)
			log.Println("Running with in-memory sessions")
			sessions = memory.NewSessionStore()
		} else {
			defer client.Close()
			log.Println("Connected to Redis")
			sessions = redisrepo.NewSessionStore(client, cfg.SessionTTL)
		}
	} else {
		sessions = memory.NewSessionStore()
	}

	// Optional sign-image archive
	var archive *storage.ImageArchive
	if cfg.MinioEndpoint != "" {
		archive, err = storage.NewImageArchive(
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
			cfg.MinioUseSSL, cfg.MinioBucket,
		)
		if err != nil {
			log.Printf("Warning: Image archive unavailable: %v", err)
			archive = nil
		} else if err := archive.EnsureBucket(ctx); err != nil {
			log.Printf("Warning: Image archive bucket unavailable: %v", err)
			archive = nil
		} else {
			log.Println("Connected to image archive:", cfg.MinioEndpoint)
		}
	}

	// Optional check-event publisher
	var publisher *events.Publisher
	if cfg.KafkaBrokers != "" {
		publisher = events.NewPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer publisher.Close()
		log.Println("Publishing check events to Kafka:", cfg.KafkaBrokers)
	}

	// Dependency Injection: services
	bridge := service.NewSignAIBridge(cfg.SignAIURL)
	rulesSvc := service.NewRulesService(repo, loc, cfg.RadiusKm)
	signSvc := service.NewSignService(bridge, sessions, archive)
	followUpSvc := service.NewFollowUpService(bridge, sessions)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "CanIParkHere API v1.0",
		BodyLimit:    16 * 1024 * 1024, // sign photos
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	handler := deliveryhttp.NewHandler(rulesSvc, signSvc, followUpSvc, repo, sessions, bridge, publisher)
	limiter := deliveryhttp.NewRateLimiter(5, 10)
	deliveryhttp.SetupRoutes(app, handler, limiter)

	// Graceful shutdown
	go func() {
		port := cfg.Port
		if port == "" {
			port = "8080"
		}
		log.Printf("Server starting on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}

type Config struct {
	DatabaseURL    string
	RedisURL       string
	RedisPassword  string
	SignAIURL      string
	KafkaBrokers   string
	KafkaTopic     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	SpotDataCSV    string
	ReloadSchedule string
	Timezone       string
	RadiusKm       float64
	SessionTTL     time.Duration
	AllowOrigins   string
	Port           string
	Env            string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SignAIURL:      getEnv("SIGN_AI_URL", "http://localhost:8000"),
		KafkaBrokers:   getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:     getEnv("KAFKA_TOPIC", events.DefaultTopic),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "") == "true",
		MinioBucket:    getEnv("MINIO_BUCKET", "sign-images"),
		SpotDataCSV:    getEnv("PARKING_DATA_CSV", ""),
		ReloadSchedule: getEnv("PARKING_DATA_RELOAD", "@every 10m"),
		Timezone:       getEnv("PARKING_TZ", "UTC"),
		RadiusKm:       getEnvFloat("PARKING_RADIUS_KM", service.DefaultRadiusKm),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		AllowOrigins:   getEnv("ALLOW_ORIGINS", "*"),
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: ignoring non-numeric %s=%q", key, value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: ignoring unparseable %s=%q", key, value)
	}
	return defaultValue
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
