package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kirana/internal/handlers"
	"kirana/internal/middleware"
	"kirana/internal/models"
	"kirana/internal/repositories"
	"kirana/internal/services"
	"kirana/pkg/cache"
	"kirana/pkg/rabbitmq"
)

// appConfig is the runtime configuration, loaded from the environment.
type appConfig struct {
	Port             string
	DatabaseDSN      string
	GoogleClientID   string
	SuperAdminEmails []string
	RabbitMQURL      string
	RedisURL         string
	CORSOrigins      string
	SecureCookies    bool
	SeedOnStart      bool
}

func loadConfig() appConfig {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "kirana.db")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("SUPER_ADMIN_EMAILS", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SECURE_COOKIES", true)
	viper.SetDefault("SEED_ON_START", false)
	viper.AutomaticEnv()

	var supers []string
	for _, email := range strings.Split(viper.GetString("SUPER_ADMIN_EMAILS"), ",") {
		if email = strings.TrimSpace(email); email != "" {
			supers = append(supers, email)
		}
	}

	return appConfig{
		Port:             viper.GetString("APP_PORT"),
		DatabaseDSN:      viper.GetString("DATABASE_DSN"),
		GoogleClientID:   viper.GetString("GOOGLE_CLIENT_ID"),
		SuperAdminEmails: supers,
		RabbitMQURL:      viper.GetString("RABBITMQ_URL"),
		RedisURL:         viper.GetString("REDIS_URL"),
		CORSOrigins:      viper.GetString("CORS_ORIGINS"),
		SecureCookies:    viper.GetBool("SECURE_COOKIES"),
		SeedOnStart:      viper.GetBool("SEED_ON_START"),
	}
}

// openDatabase connects with the postgres driver for postgres DSNs and the
// sqlite driver for anything else (a file path, or :memory: in tests).
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

// buildApp migrates the schema and wires repositories, services, handlers,
// and routes into a Fiber app. mq and verifier are injectable so tests can
// run without a broker or Google.
func buildApp(cfg appConfig, db *gorm.DB, mq *rabbitmq.Client, verifier services.TokenVerifier) (*fiber.App, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Item{},
		&models.Category{},
		&models.Cart{},
		&models.Order{},
	)
	if err != nil {
		return nil, err
	}

	var catalogCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		catalogCache = redisCache
		log.Println("Using Redis catalog cache")
	} else {
		catalogCache = cache.NewMemory()
	}

	// Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, sessionRepo, verifier, cfg.SuperAdminEmails)
	catalogService := services.NewCatalogService(itemRepo, categoryRepo, catalogCache)
	cartService := services.NewCartService(cartRepo)
	var publisher services.EventPublisher
	if mq != nil {
		publisher = mq
	}
	orderService := services.NewOrderService(orderRepo, publisher)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.SecureCookies)
	itemHandler := handlers.NewItemHandler(catalogService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	roleHandler := handlers.NewRoleHandler(authService)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	// Public routes must be registered before the session middleware is
	// mounted on the group, or they would be gated too.
	api := app.Group("/api")
	authHandler.RegisterPublicRoutes(api)
	itemHandler.RegisterPublicRoutes(api)
	categoryHandler.RegisterPublicRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	admin := protected.Group("/admin", middleware.AdminRequired())

	authHandler.RegisterProtectedRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected, admin)
	itemHandler.RegisterAdminRoutes(admin)
	categoryHandler.RegisterAdminRoutes(admin)
	roleHandler.RegisterRoutes(admin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if cfg.SeedOnStart {
		if message, err := catalogService.SeedSampleData(context.Background()); err != nil {
			log.Printf("Seeding failed: %v", err)
		} else {
			log.Println(message)
		}
	}

	return app, nil
}

func main() {
	cfg := loadConfig()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; order events disabled")
	}

	verifier := services.NewGoogleVerifier(cfg.GoogleClientID)

	app, err := buildApp(cfg, db, mqClient, verifier)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// Log order events locally when a broker is attached. Real fulfilment
	// consumers run as separate processes on the same queue.
	if mqClient != nil {
		if err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
			log.Printf("Received order event %s: %s", msg.Type, msg.Body)
			return nil
		}); err != nil {
			log.Printf("Failed to start order event consumer: %v", err)
		}
	}

	log.Printf("Starting server on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
