package bootstrap

import (
	"context"
	"log"

	"messenger-be/internal/config"
	"messenger-be/internal/controller"
	"messenger-be/internal/handler"
	"messenger-be/internal/pkg/logger"
	"messenger-be/internal/pkg/serverutils"
	"messenger-be/internal/repository/memory"
	"messenger-be/internal/repository/unitofwork"
	"messenger-be/internal/service"
	"messenger-be/internal/websocket"

	pktNats "messenger-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const StoreDriverMemory = "memory"

type Container struct {
	// Controllers
	HealthController  controller.IHealthController
	ChatController    controller.IChatController
	MessageController controller.IMessageController

	// Realtime
	RealtimeHandler *handler.RealtimeHandler
	Registry        *websocket.Registry
	ClusterRelay    *websocket.ClusterRelay

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IEventConsumerService

	Logger         *logger.ZapLogger
	RealtimeLogger *logger.ZapLogger

	natsPub *pktNats.Publisher
	rdb     *redis.Client
	pubSub  *gochannel.GoChannel
}

// NewContainer builds the object graph. db may be nil when cfg.App.StoreDriver is "memory".
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.New(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Production: cfg.App.Environment == "production",
		Console:    true,
		Level:      cfg.App.LogLevel,
	})
	rtLogger := logger.New(logger.Options{FilePath: cfg.App.RealtimeLogPath, Level: cfg.App.LogLevel})
	serverutils.SetErrorLogger(sysLogger)

	var uowFactory unitofwork.RepositoryFactory
	if cfg.App.StoreDriver == StoreDriverMemory {
		store := memory.NewStore()
		memory.SeedDemo(store)
		uowFactory = memory.NewRepositoryFactory(store)
		sysLogger.Info("BOOTSTRAP", "Using in-memory store", nil)
	} else {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	instanceID := cfg.App.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	var forwarder service.EventForwarder
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	} else {
		forwarder = natsPub
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	// 3. Realtime core
	registry := websocket.NewRegistry(rtLogger)

	var relay websocket.Relay
	var clusterRelay *websocket.ClusterRelay
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (cross-instance fan-out disabled)", err)
	} else {
		clusterRelay = websocket.NewClusterRelay(rdb, instanceID, registry, rtLogger)
		relay = clusterRelay
	}
	dispatcher := websocket.NewDispatcher(registry, relay, rtLogger)

	// 4. Services
	publisherService := service.NewEventPublisherService(service.ChatEventsTopic, pubSub)
	consumerService := service.NewEventConsumerService(
		pubSub,
		service.ChatEventsTopic,
		uowFactory,
		forwarder,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, cfg.Auth.JwtSecret)
	membershipService := service.NewMembershipService(uowFactory, cfg.Realtime.MembershipCacheTTL)
	messageService := service.NewMessageService(
		uowFactory,
		membershipService,
		publisherService,
		cfg.History,
		sysLogger,
	)

	gateway := websocket.NewGateway(
		registry,
		dispatcher,
		authService,
		membershipService,
		messageService,
		websocket.OptionsFromConfig(cfg.Realtime),
		rtLogger,
	)

	// 5. Controllers
	return &Container{
		HealthController:  controller.NewHealthController(),
		ChatController:    controller.NewChatController(membershipService, authService),
		MessageController: controller.NewMessageController(messageService, membershipService, dispatcher, authService),

		RealtimeHandler: handler.NewRealtimeHandler(gateway, rtLogger),
		Registry:        registry,
		ClusterRelay:    clusterRelay,

		ConsumerService: consumerService,

		Logger:         sysLogger,
		RealtimeLogger: rtLogger,

		natsPub: natsPub,
		rdb:     rdb,
		pubSub:  pubSub,
	}
}

// StartBackground launches the journal consumer and the cluster relay. Both stop with ctx.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.ClusterRelay != nil {
		go c.ClusterRelay.Run(ctx)
	}
	return nil
}

// Drain closes every live connection with Going Away.
func (c *Container) Drain() {
	c.Registry.Close()
}

// Close releases the brokers and flushes the loggers.
func (c *Container) Close() {
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.rdb.Close(); err != nil {
		log.Printf("[WARN] Failed to close Redis client: %v", err)
	}

	_ = c.Logger.Sync()
	_ = c.RealtimeLogger.Sync()
}
