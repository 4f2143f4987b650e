package bootstrap

import (
	"context"
	"log"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/handler"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/implementation"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/similarity"
	"ai-docchat-be/pkg/stream"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// answerCompletedTopic is the in-process bus topic carrying finished answers
// from the pipeline to the persistence consumer.
const answerCompletedTopic = "answer.completed"

type Container struct {
	// Controllers
	AskController          controller.IAskController
	ConversationController controller.IConversationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	NodeStatusHandler *handler.NodeStatusHandler
	WebSocketHub      *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Retrieval + Generation Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			cfg.Ai.OllamaEmbeddingDim,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewHashProvider()
		log.Printf("[INFO] Using Embedding Provider: HASH")
	}
	if err := embedding.ValidateDimension(embeddingProvider, model.EmbeddingDim); err != nil {
		log.Fatalf("[FATAL] Embedding provider incompatible with document store schema: %v", err)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	if llmProvider == nil {
		log.Printf("[INFO] No LLM Provider configured; answers degrade to templates")
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	similarityEngine := similarity.NewEngine()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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
		log.Printf("[WARN] Failed to connect to Redis: %v. Stage events stay instance-local", err)
		rdb = nil
	}

	// WebSocket Hub (also the pipeline's stage event sink)
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// Stream session registry
	streamManager := stream.NewManager(sysLogger)

	// Document store over pgvector
	documentRepo := implementation.NewDocumentEmbeddingRepository(db)
	documentStore := implementation.NewDocumentStoreAdapter(documentRepo)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, answerCompletedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		answerCompletedTopic,
		uowFactory,
		natsPub,
	)

	askService := service.NewAskService(
		uowFactory,
		streamManager,
		wsHub,
		documentStore,
		embeddingProvider,
		similarityEngine,
		llmProvider,
		publisherService,
		sysLogger,
		cfg.Images,
	)
	conversationService := service.NewConversationService(uowFactory)

	// Answer-ready notifications over the durable event stream
	if natsSub != nil {
		notifierService := service.NewNotifierService(natsSub, wsHub, sysLogger)
		go func() {
			if err := notifierService.Start(); err != nil {
				log.Printf("[WARN] Answer notifier not started: %v", err)
			}
		}()
	}

	// 5. Controllers
	return &Container{
		AskController:          controller.NewAskController(askService, streamManager),
		ConversationController: controller.NewConversationController(conversationService),

		ConsumerService:   consumerService,
		NodeStatusHandler: handler.NewNodeStatusHandler(wsHub, sysLogger),
		WebSocketHub:      wsHub,
	}
}
