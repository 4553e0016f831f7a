package bootstrap

import (
	"context"
	"log"

	"doc-assistant-gw/internal/config"
	"doc-assistant-gw/internal/controller"
	"doc-assistant-gw/internal/handler"
	"doc-assistant-gw/internal/pkg/logger"
	"doc-assistant-gw/internal/repository/memory"
	"doc-assistant-gw/internal/service"
	"doc-assistant-gw/internal/websocket"
	"doc-assistant-gw/pkg/regen"
	"doc-assistant-gw/pkg/scope"
	"doc-assistant-gw/pkg/session"

	pktNats "doc-assistant-gw/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	ScopeController controller.IScopeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	// Without the ack gate the bus hands every message to its own goroutine
	// and token deltas can overtake each other on the way to the hub.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	// A typed nil must not end up behind the interface, downstream code
	// checks it against nil
	var eventPub regen.EventPublisher
	if natsPub != nil {
		eventPub = natsPub
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
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Chat.StreamTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Chat.StreamTopic, wsHub)

	transport := session.NewHTTPTransport(cfg.Upstream.QABaseURL)
	scopeStore := scope.NewHTTPStore(cfg.Upstream.ScopeBaseURL)
	assistantRepo := memory.NewAssistantRepository()

	assistantService := service.NewAssistantService(
		cfg,
		transport,
		scopeStore,
		assistantRepo,
		publisherService,
		eventPub,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		ChatController:  controller.NewChatController(assistantService),
		ScopeController: controller.NewScopeController(assistantService),

		StreamHandler: handler.NewStreamHandler(wsHub, cfg.App.JWTSecret, wsLogger),
		WebSocketHub:  wsHub,

		ConsumerService: consumerService,
	}
}
