package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-qa-be/internal/config"
	"ai-qa-be/internal/constant"
	"ai-qa-be/internal/controller"
	"ai-qa-be/internal/handler"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/repository/memory"
	redisRepo "ai-qa-be/internal/repository/redis"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/internal/service"
	"ai-qa-be/internal/websocket"
	"ai-qa-be/pkg/embedding"
	"ai-qa-be/pkg/embedding/cache"
	embeddingOpenAI "ai-qa-be/pkg/embedding/openai"
	"ai-qa-be/pkg/events"
	"ai-qa-be/pkg/llm/factory"
	"ai-qa-be/pkg/packer"
	"ai-qa-be/pkg/similarity"
	"ai-qa-be/pkg/tokenizer"

	pktNats "ai-qa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	FolderController    controller.IFolderController
	TextController      controller.ITextController
	QAController        controller.IQAController
	ChatController      controller.IChatController
	TokenizerController controller.ITokenizerController
	OAuthController     controller.IOAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	CorpusService   service.ICorpusService

	// WebSockets
	QASocketHandler *handler.QASocketHandler
	WebSocketHub    *websocket.Hub

	Logger         logger.ILogger
	NatsSubscriber *pktNats.Subscriber

	closers []func()
}

// nopPublisher stands in for NATS when the bus is unreachable.
type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) error { return nil }

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)

	var closers []func()

	// 2. Indexing queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	closers = append(closers, func() { pubSub.Close() })

	// 3. Event bus
	var eventPub events.Publisher = nopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPub = natsPub
		closers = append(closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		closers = append(closers, natsSub.Close)
	}

	// 4. Model providers
	embeddingProvider := newEmbeddingProvider(cfg)

	var cacheStore cache.Store
	if cfg.App.RedisURL != "" {
		rdb := newRedisClient(cfg.App.RedisURL)
		cacheStore = redisRepo.NewEmbeddingCacheRepository(rdb, cfg.Ai.EmbeddingCacheTTL, sysLogger)
		closers = append(closers, func() { rdb.Close() })
		log.Printf("[INFO] Query embedding cache: REDIS")
	} else {
		cacheStore = memory.NewEmbeddingCacheRepository(cfg.Ai.EmbeddingCacheTTL)
		log.Printf("[INFO] Query embedding cache: IN-MEMORY")
	}
	queryEmbedder := cache.New(embeddingProvider, cacheStore, cfg.Ai.EmbeddingProvider+":"+cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	counter, err := tokenizer.New(cfg.Ai.LLMModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize tokenizer: %v", err)
	}

	// 5. Core engine
	qaBudget := tokenizer.Budget{
		Total:      cfg.Ai.Budget.TotalTokens,
		Completion: cfg.Ai.Budget.QACompletionTokens,
		Selection:  cfg.Ai.Budget.SelectionTokens,
	}
	chatBudget := tokenizer.Budget{
		Total:      cfg.Ai.Budget.TotalTokens,
		Completion: cfg.Ai.Budget.ChatCompletionTokens,
	}

	scorer := similarity.NewScorer(similarity.Config{
		BatchSize: cfg.Ai.ScoreBatchSize,
		Workers:   cfg.Ai.ScoreWorkers,
	})
	pk := packer.New(
		service.NewPassageStore(uowFactory),
		counter,
		qaBudget,
		packer.Templates{
			System:      constant.QASystemPrompt,
			Instruction: constant.QAInstructionPrompt,
			Selection:   constant.QASelectionPrompt,
			Placeholder: constant.QAEmptyContextPlaceholder,
		},
		service.NewSourceChooser(llmProvider, cfg.Ai.Budget.SelectionTokens),
	)

	// 6. Services
	corpusService := service.NewCorpusService(uowFactory, sysLogger)
	publisherService := service.NewPublisherService(cfg.App.IndexTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IndexTopic,
		uowFactory,
		embeddingProvider,
		cfg.Ai.EmbeddingModel,
		corpusService,
		eventPub,
		sysLogger,
	)

	folderService := service.NewFolderService(uowFactory, corpusService, eventPub, sysLogger)
	textService := service.NewTextService(
		uowFactory,
		publisherService,
		corpusService,
		eventPub,
		counter,
		cfg.Ai.Budget.TotalTokens,
		sysLogger,
	)
	qaService := service.NewQAService(
		corpusService,
		queryEmbedder,
		llmProvider,
		pk,
		scorer,
		cfg.Ai.Budget,
		cfg.Ai.TopK,
		streamLogger,
	)
	chatService := service.NewChatService(llmProvider, counter, chatBudget)
	oauthService := service.NewOAuthService(uowFactory, cfg.Keys, sysLogger)

	// 7. WebSocket Hub
	wsHub := websocket.NewHub(streamLogger)
	go wsHub.Run()
	closers = append(closers, wsHub.Shutdown)

	// 8. Controllers
	auth := serverutils.NewJwtMiddleware(cfg.Keys.JWTSecret, cfg.Keys.JWTIssuer)

	return &Container{
		FolderController:    controller.NewFolderController(folderService, auth),
		TextController:      controller.NewTextController(textService, auth),
		QAController:        controller.NewQAController(qaService, streamLogger),
		ChatController:      controller.NewChatController(chatService, streamLogger),
		TokenizerController: controller.NewTokenizerController(chatService),
		OAuthController:     controller.NewOAuthController(oauthService, cfg.App.ClientURL, cfg.IsProduction(), sysLogger),

		ConsumerService: consumerService,
		CorpusService:   corpusService,

		QASocketHandler: handler.NewQASocketHandler(wsHub, qaService, streamLogger),
		WebSocketHub:    wsHub,

		Logger:         sysLogger,
		NatsSubscriber: natsSub,

		closers: closers,
	}
}

// Close releases the container's connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}

func newEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	case "gemini":
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel)
	default:
		baseURL := cfg.Ai.EmbeddingBaseURL
		if baseURL == "" {
			baseURL = constant.OpenAIDefaultBaseURL
		}
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
		return embeddingOpenAI.NewProvider(baseURL, cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
