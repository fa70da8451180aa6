package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/repository"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/service"
	transport "github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/transport/http"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/transport/http/handler"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/config"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/db"
	kafka2 "github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/kafka"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	outboxRepository "github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/outbox/repository"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/outbox/worker"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/utils"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "warehouse-service")
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: cfg.Log.Level,
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

	orderRepo := repository.NewOrderRepository(pool, logger)
	lineRepo := repository.NewLineRepository(pool, logger)
	itemRepo := repository.NewItemRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)

	cartService := service.NewCartService(logger, cartRepo, itemRepo)
	itemService := service.NewCachedItemService(
		service.NewItemService(logger, itemRepo, lineRepo),
		redisClient,
	)
	orderService := service.NewOrderService(pool, logger, orderRepo, lineRepo, itemRepo, outboxRepo, cartService, cfg.Kafka.Topic)

	kafkaProducer, err := kafka2.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	app := fiber.New()

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 5 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	transport.RegisterRoutes(app, &transport.Handlers{
		Order: handler.NewOrderHandler(orderService, cartService, logger),
		Item:  handler.NewItemHandler(itemService, logger),
		Cart:  handler.NewCartHandler(cartService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("error serving http: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer exit()

	mylogger.Info(shutdownCtx, logger, "Shutting down warehouse service")

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Failed to shut down http server", zap.Error(err))
	}

	if err := kafkaProducer.Close(); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Failed to close kafka producer", zap.Error(err))
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		mylogger.Warn(shutdownCtx, logger, "Failed to shut down telemetry", zap.Error(err))
	}

	pool.Close()
}
