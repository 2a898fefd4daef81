package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/barnabasli/alexandria/internal/config"
	"github.com/barnabasli/alexandria/internal/controller"
	"github.com/barnabasli/alexandria/internal/pkg/logger"
	"github.com/barnabasli/alexandria/internal/pkg/serverutils"
	"github.com/barnabasli/alexandria/internal/repository/implementation"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/internal/service"
	"github.com/barnabasli/alexandria/pkg/embedding"
	"github.com/barnabasli/alexandria/pkg/llm/factory"
	pktNats "github.com/barnabasli/alexandria/pkg/nats"
	"github.com/barnabasli/alexandria/pkg/qa"
	"github.com/barnabasli/alexandria/pkg/rag/budget"
	"github.com/barnabasli/alexandria/pkg/rag/corpuscache"
	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
	"github.com/barnabasli/alexandria/pkg/rag/sources"
	"github.com/barnabasli/alexandria/pkg/rag/stream"
	"github.com/barnabasli/alexandria/pkg/rag/synthesis"
	"github.com/barnabasli/alexandria/pkg/storage"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

type Container struct {
	// Controllers
	QueryController        controller.IQueryController
	PaperController        controller.IPaperController
	OrganizationController controller.IOrganizationController

	// Background services (exposed for main.go to run)
	IndexerService service.IIndexerService

	// Held for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := log.Default()

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Vector index
	var index vectorindex.Index
	if cfg.Ai.VectorBackend == "pinecone" {
		index = vectorindex.NewPineconeIndex(cfg.Ai.PineconeHost, cfg.Keys.Pinecone)
		log.Printf("[INFO] Using Vector Backend: PINECONE")
	} else {
		index = vectorindex.NewPgVectorIndex(implementation.NewPaperVectorRepository(db))
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	}

	// 5. Object storage
	store, err := storage.NewSupabaseStore(
		cfg.Storage.SupabaseURL,
		cfg.Storage.SupabaseKey,
		cfg.Storage.Bucket,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize storage: %v", err)
	}

	// 6. NATS event publisher (degraded mode without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 7. Corpus cache, with cross-instance invalidation when redis is up
	engine := qa.NewLLMEngine(llmProvider, ragLogger)

	var bus corpuscache.InvalidationBus
	if cfg.App.RedisURL != "" {
		redisBus, err := corpuscache.NewRedisInvalidationBus(cfg.App.RedisURL, ragLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect invalidation bus: %v", err)
		} else {
			bus = redisBus
		}
	}

	cache := corpuscache.NewCache(
		engine,
		service.NewPaperSource(uowFactory, store),
		corpuscache.Options{
			CorpusTTL:    cfg.Cache.CorpusTTL,
			ByteCacheTTL: cfg.Cache.ByteCacheTTL,
			BuildTimeout: cfg.Cache.BuildTimeout,
			Bus:          bus,
		},
		ragLogger,
	)

	// 8. Answer pipeline
	pipeline := stream.NewPipeline(
		retrieval.NewRetriever(index, embeddingProvider, cfg.Ai.TopK, ragLogger),
		budget.NewBudgeter(cfg.Ai.NoiseFloor, ragLogger),
		synthesis.NewSynthesizer(
			engine,
			synthesis.NewCleaner(synthesis.DefaultEchoPrefixes, cfg.Ai.EchoSimilarity),
			cfg.Ai.InsufficiencyPhrases,
			ragLogger,
		),
		sources.NewResolver(cfg.Ai.TopK, ragLogger),
		stream.PipelineConfig{
			Pacing: stream.Pacing{
				ThinkingTick: cfg.Stream.ThinkingTick,
				FragmentTick: cfg.Stream.FragmentTick,
			},
			FragmentCount:    cfg.Stream.FragmentCount,
			MaxContextTokens: cfg.Ai.MaxTokens,
			SynthesisTimeout: cfg.Stream.SynthesisTimeout,
		},
		ragLogger,
	)

	// 9. Services
	membershipService := service.NewMembershipService(uowFactory)
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IndexTopic)

	paperService := service.NewPaperService(
		uowFactory,
		membershipService,
		store,
		cache,
		index,
		publisherService,
		natsPub,
		sysLogger,
	)
	queryService := service.NewQueryService(
		membershipService,
		uowFactory,
		cache,
		pipeline,
		store,
		sysLogger,
	)
	organizationService := service.NewOrganizationService(uowFactory, membershipService)

	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Keys.IndexTopic,
		uowFactory,
		embeddingProvider,
		index,
		store,
		natsPub,
	)

	// 10. HTTP error mappings
	registerErrorMappings()

	return &Container{
		QueryController:        controller.NewQueryController(queryService),
		PaperController:        controller.NewPaperController(paperService),
		OrganizationController: controller.NewOrganizationController(organizationService, membershipService),

		IndexerService: indexerService,

		NatsPublisher: natsPub,
		Logger:        sysLogger,
	}
}

func registerErrorMappings() {
	serverutils.RegisterErrorStatus(service.ErrNotApprovedMember, fiber.StatusForbidden, "You are not an approved member of this organization")
	serverutils.RegisterErrorStatus(service.ErrOrganizationNotFound, fiber.StatusNotFound, "Organization not found")
	serverutils.RegisterErrorStatus(service.ErrPaperNotFound, fiber.StatusNotFound, "Paper not found")
	serverutils.RegisterErrorStatus(service.ErrUnsupportedDocument, fiber.StatusBadRequest, "Unsupported document type")
	serverutils.RegisterErrorStatus(corpuscache.ErrNoPapers, fiber.StatusBadRequest, "No papers uploaded yet. Upload a document before asking questions")
}
