// Package bootstrap wires configuration, connections, adapters, services,
// and the HTTP surface together.
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"nutri_server/adapter/out/persistence"
	"nutri_server/config"
	"nutri_server/core/agent/llm"
	"nutri_server/core/agent/rag"
	"nutri_server/core/port/out"
	"nutri_server/core/service/feedback"
	"nutri_server/core/service/profile"
	"nutri_server/core/service/recommendation"
	"nutri_server/core/service/training"
	"nutri_server/infra/database"
	"nutri_server/internal/jobs"
	"nutri_server/pkg/cache"
	"nutri_server/pkg/logger"
)

type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client

	// Repositories
	CatalogRepo  out.CatalogRepository
	EmbeddingDB  out.EmbeddingStore
	ProfileRepo  out.ProfileRepository
	RecRepo      out.RecommendationRepository
	FeedbackRepo out.FeedbackRepository
	TrainingRepo out.TrainingRepository

	// Agent layer
	ChatModel      llm.ChatModel
	EmbeddingModel llm.EmbeddingModel
	Recommender    *llm.Recommender
	Embedder       *rag.EmbeddingGateway

	// Services
	RecommendationService *recommendation.Service
	ProfileService        *profile.Service
	TrainingService       *training.Service
	FeedbackService       *feedback.Service

	// Background jobs
	JobQueue *jobs.Queue
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	log := logger.Component("bootstrap")
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool, health checks)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, db.Close)

	// Database (sqlx, repository adapters)
	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis (optional; absence only disables caching)
	var redisCache *cache.RedisCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis connection failed, caching disabled")
		} else {
			deps.Redis = redisClient
			redisCache = cache.NewRedisCache(redisClient)
			cleanups = append(cleanups, func() { redisClient.Close() })
		}
	}

	// Repositories
	deps.CatalogRepo = persistence.NewCatalogRepository(sqlDB)
	deps.EmbeddingDB = persistence.NewEmbeddingStore(sqlDB)
	deps.ProfileRepo = persistence.NewProfileRepository(sqlDB)
	deps.RecRepo = persistence.NewRecommendationRepository(sqlDB)
	deps.FeedbackRepo = persistence.NewFeedbackRepository(sqlDB)
	deps.TrainingRepo = persistence.NewTrainingRepository(sqlDB)

	// Model providers. Either may be nil; the pipeline degrades to SQL
	// retrieval and deterministic ranking.
	deps.ChatModel = llm.NewChatModel(cfg)
	deps.EmbeddingModel = llm.NewEmbeddingModel(cfg)
	deps.Recommender = llm.NewRecommender(deps.ChatModel)
	deps.Embedder = rag.NewEmbeddingGateway(deps.EmbeddingModel)

	if deps.ChatModel == nil {
		log.Warn().Msg("no chat provider configured, rankings use the deterministic fallback")
	}
	if deps.EmbeddingModel == nil {
		log.Warn().Msg("no embedding provider configured, retrieval uses sql mode")
	}

	// Retrieval strategy
	sqlRetriever := recommendation.NewSQLRetriever(deps.CatalogRepo, cfg.MaxCandidates)
	var retriever recommendation.Retriever = sqlRetriever
	if cfg.RetrievalMode == config.RetrievalVector && deps.Embedder.Available() {
		vectorRetriever := recommendation.NewVectorRetriever(
			deps.Embedder, deps.CatalogRepo, deps.EmbeddingDB,
			redisCache, cfg.EmbeddingCacheTTL,
			cfg.VectorTopK, cfg.MaxCandidates,
		)
		retriever = recommendation.NewFallbackRetriever(
			vectorRetriever, sqlRetriever, logger.Component("retriever"),
		)
	}

	// Services
	deps.RecommendationService = recommendation.NewService(recommendation.ServiceDeps{
		Config:      cfg,
		Retriever:   retriever,
		Recommender: deps.Recommender,
		Embedder:    deps.Embedder,
		Catalog:     deps.CatalogRepo,
		Embeddings:  deps.EmbeddingDB,
		Profiles:    deps.ProfileRepo,
		Recs:        deps.RecRepo,
		Feedback:    deps.FeedbackRepo,
		Sessions:    deps.TrainingRepo,
		Cache:       redisCache,
	})

	// Background job queue for detached generation
	deps.JobQueue = jobs.NewQueue(deps.RecommendationService, cfg.JobWorkers, cfg.JobQueueSize)
	if err := deps.JobQueue.Start(); err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, deps.JobQueue.Stop)

	deps.ProfileService = profile.NewService(deps.ProfileRepo, deps.JobQueue)
	deps.TrainingService = training.NewService(deps.TrainingRepo, deps.JobQueue)
	deps.FeedbackService = feedback.NewService(deps.FeedbackRepo, deps.RecommendationService)

	log.Info().
		Str("retrieval_mode", cfg.RetrievalMode).
		Str("llm_provider", cfg.LLMProvider).
		Str("embedding_provider", cfg.EmbeddingProvider).
		Msg("dependencies initialized")

	return deps, cleanup, nil
}
