package bootstrap

import (
	"context"
	"log"

	"emotion-ai-be/internal/config"
	"emotion-ai-be/internal/controller"
	"emotion-ai-be/internal/handler"
	"emotion-ai-be/internal/pkg/logger"
	"emotion-ai-be/internal/repository/contract"
	"emotion-ai-be/internal/repository/implementation"
	"emotion-ai-be/internal/repository/memory"
	"emotion-ai-be/internal/service"
	"emotion-ai-be/internal/websocket"
	"emotion-ai-be/pkg/agent"
	"emotion-ai-be/pkg/detector"
	"emotion-ai-be/pkg/events"
	"emotion-ai-be/pkg/llm/factory"

	pktNats "emotion-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// persistTopic is the in-process queue carrying detection rows from the
// request path to the background writer.
const persistTopic = "emotion.detections.persist"

type Container struct {
	// Controllers
	EmotionController controller.IEmotionController
	AuthController    controller.IAuthController
	UserController    controller.IUserController
	HistoryController controller.IHistoryController

	// WebSockets
	StreamHandler *handler.StreamHandler
	Registry      *websocket.Registry

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// PersistenceEnabled reports whether a database is wired in. Auth and
	// history routes only exist when it is.
	PersistenceEnabled bool
}

// NewContainer wires every component. db may be nil; the service then runs
// fully stateless with mock fallbacks on every read path.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Backends
	det, err := detector.New(cfg.Ai.DetectorBackend, cfg.Ai.DetectorBaseURL)
	if err != nil {
		log.Printf("[WARN] %v, falling back to mock detector", err)
		det = detector.NewMockDetector()
	}
	log.Printf("[INFO] Using detector backend: %s", cfg.Ai.DetectorBackend)

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	replyCache := memory.NewReplyCache()
	recommendationAgent := agent.NewAgent(llmProvider, replyCache, sysLogger)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	registry := websocket.NewRegistry(rdb, streamLogger)
	go registry.RunFanout(context.Background())

	// 5. Repositories (persistence is optional)
	var (
		detectionRepo contract.DetectionRepository
		productRepo   contract.ProductRepository
		historyRepo   contract.HistoryRepository
		userRepo      contract.UserRepository
	)
	if db != nil {
		detectionRepo = implementation.NewDetectionRepository(db)
		productRepo = implementation.NewProductRepository(db)
		historyRepo = implementation.NewHistoryRepository(db)
		userRepo = implementation.NewUserRepository(db)
	}

	// 6. Services
	publisherService := service.NewPublisherService(persistTopic, pubSub)
	detectionService := service.NewDetectionService(det, publisherService, detectionRepo, sysLogger)
	recommendationService := service.NewRecommendationService(recommendationAgent, productRepo, historyRepo, natsPub, sysLogger)

	var consumerService service.IConsumerService
	if db != nil {
		consumerService = service.NewConsumerService(pubSub, persistTopic, detectionRepo, natsPub, sysLogger)
	}

	// Audit trail: every detection event that reaches the bus lands in the
	// system log, regardless of which instance persisted it.
	if natsSub != nil {
		if err := natsSub.Subscribe("events."+events.TypeEmotionDetected, "emotion-audit", func(_ context.Context, evt events.Event) error {
			sysLogger.Info("Audit", "Emotion detected", evt.Payload())
			return nil
		}); err != nil {
			log.Printf("[WARN] Failed to subscribe to detection events: %v", err)
		}
	}

	container := &Container{
		EmotionController:  controller.NewEmotionController(detectionService, recommendationService, registry),
		UserController:     controller.NewUserController(),
		StreamHandler:      handler.NewStreamHandler(registry, detectionService, recommendationService, streamLogger),
		Registry:           registry,
		ConsumerService:    consumerService,
		PersistenceEnabled: db != nil,
	}

	if db != nil {
		authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret)
		historyService := service.NewHistoryService(historyRepo)
		container.AuthController = controller.NewAuthController(authService)
		container.HistoryController = controller.NewHistoryController(historyService)
	}

	return container
}
