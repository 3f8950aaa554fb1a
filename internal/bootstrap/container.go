package bootstrap

import (
	"log"

	"etp-authoring-be/internal/config"
	"etp-authoring-be/internal/controller"
	"etp-authoring-be/internal/pkg/logger"
	"etp-authoring-be/internal/repository/memory"
	"etp-authoring-be/internal/repository/unitofwork"
	"etp-authoring-be/internal/service"
	"etp-authoring-be/pkg/embedding"
	"etp-authoring-be/pkg/llm/factory"
	"etp-authoring-be/pkg/retrieval"

	pktNats "etp-authoring-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	EtpController controller.IEtpController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		log.Printf("[INFO] Embedding disabled, kb chunks stored without vectors")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// NATS (optional: the conversation flow works without the external bus)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 4. Services
	publisherService := service.NewPublisherService(
		natsPub,
		pubSub,
		cfg.App.EmbedKbTopic,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EmbedKbTopic,
		uowFactory,
		embeddingProvider,
	)

	// Knowledge-base retrieval: only wired when embeddings are available,
	// otherwise the generator runs on its deterministic templates.
	var retriever retrieval.Retriever
	if embeddingProvider != nil {
		kbSearcher := service.NewKbSearcher(uowFactory)
		retriever = retrieval.NewHybridRetriever(embeddingProvider, kbSearcher, kbSearcher, sysLogger.Raw())
	}

	conversationService := service.NewConversationService(
		uowFactory,
		sessionRepo,
		llmProvider,
		retriever,
		publisherService,
		sysLogger,
		cfg.Ai.GenerateTimeoutMs,
	)
	documentService := service.NewDocumentService(
		uowFactory,
		sessionRepo,
		publisherService,
		sysLogger,
	)
	kbService := service.NewKbService(publisherService)

	// 5. Controllers
	return &Container{
		EtpController: controller.NewEtpController(
			conversationService,
			documentService,
			kbService,
		),

		ConsumerService: consumerService,
	}
}
