// cmd/chatbot/runtime.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"support-chatbot/internal/api"
	"support-chatbot/internal/assembler"
	"support-chatbot/internal/chat"
	"support-chatbot/internal/common/config"
	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/database"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/observability"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/generation"
)

// runtime holds the connections and services shared by every subcommand.
type runtime struct {
	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
	obs    *observability.Observability

	pg      *database.PostgresClient
	redis   *database.RedisClient
	es      *database.ElasticsearchClient
	index   *dataaccess.SearchIndex
	catalog *dataaccess.PostgresStore
	store   dataaccess.DataAccess
	gen     *generation.Client
	chat    *chat.Service
	checks  map[string]api.ReadinessCheck
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// newRuntime connects to postgres (and redis / elasticsearch when configured)
// and wires the chat pipeline on top. retries is the connection attempt budget.
func newRuntime(ctx context.Context, serviceName string, retries int) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	rt := &runtime{
		cfg:    cfg,
		zapLog: zapLog,
		log:    logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": serviceName}),
		obs:    observability.New(serviceName),
		checks: map[string]api.ReadinessCheck{},
	}

	// --- PostgreSQL ---
	err = retryWithBackoff(func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		rt.pg = pg
		return nil
	}, retries, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		rt.close()
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	if err := rt.pg.Migrate(ctx); err != nil {
		rt.close()
		return nil, err
	}
	rt.checks["postgres"] = rt.pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch (optional) ---
	var searcher dataaccess.ProductSearcher
	if cfg.Search.UsesElasticsearch() {
		err = retryWithBackoff(func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			rt.es = es
			return nil
		}, retries, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			rt.close()
			return nil, err
		}
		if err := rt.es.EnsureProductIndex(ctx, cfg.Search.Index); err != nil {
			rt.close()
			return nil, err
		}
		rt.index = dataaccess.NewSearchIndex(rt.es.Client, cfg.Search.Index)
		searcher = rt.index
		rt.checks["elasticsearch"] = rt.es.Ping
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Search.Index))
	}

	rt.catalog = dataaccess.NewPostgresStore(rt.pg.DB, searcher, rt.log)
	var store dataaccess.DataAccess = rt.catalog

	// --- Redis cache (optional) ---
	if cfg.Cache.Enabled {
		err = retryWithBackoff(func() error {
			r, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := r.Ping(ctx); err != nil {
				_ = r.Close()
				return err
			}
			rt.redis = r
			return nil
		}, retries, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			rt.close()
			return nil, err
		}
		store = dataaccess.NewCachedStore(store, rt.redis.Client, time.Duration(cfg.Cache.TTL)*time.Second, cfg.Cache.KeyPrefix, rt.log)
		rt.checks["redis"] = rt.redis.Ping
		zapLog.Info("Redis connected successfully")
	}
	rt.store = store

	// --- Chat pipeline ---
	rt.gen = generation.NewClient(generation.NewConfig(cfg), rt.log)
	var hints chat.HintClassifier
	if cfg.Generation.IntentHintEnabled {
		hints = rt.gen
	}
	rt.chat = chat.NewService(assembler.New(store, rt.log), rt.gen, store, hints, rt.obs, rt.log)

	return rt, nil
}

func (rt *runtime) close() {
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.zapLog.Error("Error closing Redis", zap.Error(err))
		}
	}
	if rt.pg != nil {
		if err := rt.pg.Close(); err != nil {
			rt.zapLog.Error("Error closing PostgreSQL", zap.Error(err))
		}
	}
	rt.obs.Shutdown(context.Background())
	_ = rt.zapLog.Sync()
}
