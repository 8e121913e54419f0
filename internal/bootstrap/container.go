package bootstrap

import (
	"log"

	"bakery-support-be/internal/config"
	"bakery-support-be/internal/controller"
	"bakery-support-be/internal/pkg/logger"
	"bakery-support-be/internal/repository/memory"
	"bakery-support-be/internal/service"
	"bakery-support-be/pkg/conversation"
	"bakery-support-be/pkg/embedding"
	"bakery-support-be/pkg/feedback"
	"bakery-support-be/pkg/generation"
	"bakery-support-be/pkg/llm/factory"
	"bakery-support-be/pkg/retrieval"
	"bakery-support-be/pkg/support"
	"bakery-support-be/pkg/vectorindex"

	pktNats "bakery-support-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	MirrorConsumerService service.IMirrorConsumerService

	// Shared facades
	SysLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := embedding.NewMistralProvider(
		cfg.Chatbot.MistralBaseURL,
		cfg.Keys.Mistral,
		cfg.Chatbot.EmbeddingModel,
	)
	log.Printf("[INFO] Using Embedding Provider: MISTRAL (%s)", cfg.Chatbot.EmbeddingModel)

	completionProvider, err := factory.NewCompletionProvider(
		cfg.Chatbot.LLMProvider,
		cfg.Chatbot.LLMModel,
		cfg.Keys.Anthropic,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Chatbot.LLMProvider, cfg.Chatbot.LLMModel)

	// 4. Vector Indexes (one table per concern)
	productIndex := vectorindex.NewPgIndex(db, cfg.Chatbot.ProductIndexTable)
	conversationIndex := vectorindex.NewPgIndex(db, cfg.Chatbot.ConvIndexTable)
	feedbackIndex := vectorindex.NewPgIndex(db, cfg.Chatbot.FeedbackIndexTable)

	// 5. In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 6. NATS fanout (optional, chat flow works without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 7. Conversation mirror pipeline
	mirror := conversation.NewWatermillMirror(pubSub, cfg.Keys.MirrorTopic)
	mirrorConsumerService := service.NewMirrorConsumerService(
		pubSub,
		cfg.Keys.MirrorTopic,
		embeddingProvider,
		conversationIndex,
		natsPub,
		logger.NewIsolatedLogger("logs/conversation_mirror.log"),
	)

	// 8. Domain components
	retrievalEngine := retrieval.NewEngine(
		embeddingProvider,
		productIndex,
		cfg.Chatbot.TopK,
		cfg.Chatbot.RelevanceThreshold,
		nil,
	)
	recall := conversation.NewRecall(embeddingProvider, conversationIndex, nil)
	recorder := feedback.NewRecorder(cfg.Chatbot.FeedbackFile, embeddingProvider, feedbackIndex, nil)

	// Degraded replies are filed into the recorder as rating-1 entries.
	generator := generation.NewGenerator(retrievalEngine, completionProvider, recall, recorder, nil)

	var notifier support.Notifier
	if cfg.SMTP.Enabled {
		notifier = support.NewEmailNotifier(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.TeamEmail,
		)
	}
	supportSystem := support.NewSystem(cfg.Chatbot.TicketsFile, notifier, nil)

	chatService := service.NewChatService(
		sessionRepo,
		generator,
		retrievalEngine,
		recorder,
		supportSystem,
		mirror,
		cfg.Chatbot.MaxHistory,
		natsPub,
	)

	return &Container{
		ChatController:        controller.NewChatController(chatService),
		MirrorConsumerService: mirrorConsumerService,
		SysLogger:             sysLogger,
	}
}
