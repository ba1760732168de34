package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/modavia/order-service/common/errors"
	"github.com/modavia/order-service/common/logger"
	"github.com/modavia/order-service/config"
	"github.com/modavia/order-service/controllers"
	"github.com/modavia/order-service/database"
	"github.com/modavia/order-service/events"
	"github.com/modavia/order-service/middleware"
	"github.com/modavia/order-service/repository"
	"github.com/modavia/order-service/routes"
	"github.com/modavia/order-service/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Log.Fatal("Error connecting to database", zap.Error(err))
	}
	defer database.Close()

	orderRepo := repository.NewMongoOrderRepository(database.DB)
	productRepo := repository.NewMongoProductRepository(database.DB)

	var publisher services.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, logger.Log)
		defer producer.Close()
		publisher = producer
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set; order events are disabled")
	}

	orderService := services.NewOrderService(
		orderRepo,
		productRepo,
		services.PermissiveTransitionPolicy(logger.Log),
		publisher,
		logger.Log,
	)
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey)
	if cfg.StripeWebhookKey == "" {
		logger.Log.Warn("STRIPE_WEBHOOK_SECRET not set; webhook payloads are accepted without signature verification")
	}

	orderController := controllers.NewOrderController(orderService)
	paymentController := controllers.NewPaymentController(stripeService, orderService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.RateLimitMiddleware())
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, cfg.JWTSecret, orderController, paymentController)

	logger.Log.Info("Starting order service", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
