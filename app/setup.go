package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators NewApp wires into the handlers.
type Deps struct {
	Store     database.Store
	Publisher events.Publisher
	Hub       *events.Hub
	Log       *logrus.Logger
}

// SetupAndRunApp loads configuration, connects the store and serves until SIGINT/SIGTERM.
func SetupAndRunApp() error {
	if err := config.LoadENV(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := NewLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, database.Options{
		Driver:        cfg.StoreDriver,
		PostgresURI:   cfg.PostgresURI,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		return err
	}
	log.WithField("driver", cfg.StoreDriver).Info("connected to store")

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.WithError(err).Error("failed to close store")
		}
	}()

	hub := events.NewHub()
	publisher, err := newPublisher(cfg, hub, log)
	if err != nil {
		return err
	}

	app := NewApp(cfg, Deps{Store: store, Publisher: publisher, Hub: hub, Log: log})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("listening")
	return app.Listen(":" + cfg.Port)
}

// newPublisher publishes through MQTT when MQTT_URL is set, otherwise straight to the hub.
func newPublisher(cfg *config.Config, hub *events.Hub, log *logrus.Logger) (events.Publisher, error) {
	if cfg.MQTTURL == "" {
		return hub, nil
	}

	client, err := events.Connect(cfg.MQTTURL)
	if err != nil {
		return nil, err
	}
	if err := events.Subscribe(client, cfg.MQTTTopic, hub, log); err != nil {
		return nil, fmt.Errorf("failed to subscribe to todo events: %w", err)
	}
	log.WithField("topic", cfg.MQTTTopic).Info("publishing todo events over mqtt")
	return events.NewMQTTPublisher(client, cfg.MQTTTopic), nil
}

// NewApp builds the fiber app with its middleware chain and routes.
func NewApp(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "go-todo",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.TokenHeader,
	}))
	app.Use(helmet.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path} ${latency} ${locals:requestid}\n",
		Output: deps.Log.Out,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Response{
				Status:  "fail",
				Message: "Too many requests",
			})
		},
	}))

	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)

	router.SetupRoutes(app, router.Handlers{
		Gate:    middleware.AuthGate(codec, deps.Log),
		Profile: handlers.NewProfileHandler(deps.Store, codec, deps.Log),
		Todo:    handlers.NewTodoHandler(deps.Store, deps.Publisher, deps.Log),
		Stream:  handlers.NewStreamHandler(deps.Hub, deps.Log),
	})

	return app
}
