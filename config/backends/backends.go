// Package backends opens the storage & messaging services enabled in the config
// and falls back to in-memory adapters for the disabled ones.
package backends

import (
	"context"
	"fmt"

	postgresConfig "github.com/crabzie/foldbatch/config/storage/postgresql"
	redisConfig "github.com/crabzie/foldbatch/config/storage/redis"
	config "github.com/crabzie/foldbatch/config/utils"
	"github.com/crabzie/foldbatch/internal/adapter/queue/rabbitmq"
	"github.com/crabzie/foldbatch/internal/adapter/storage/memory"
	"github.com/crabzie/foldbatch/internal/adapter/storage/postgres"
	redisAdapter "github.com/crabzie/foldbatch/internal/adapter/storage/redis"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// memoryEventBufferSize bounds the in-process event bus used without a broker
const memoryEventBufferSize = 256

// Backends groups every port a binary may need
type Backends struct {
	Submissions port.SubmissionRepository
	Records     port.FoldRecordRepository
	Ledger      port.SubmissionLedger
	Publisher   port.EventPublisher
	Consumer    port.EventConsumer

	db    *postgresConfig.DB
	cache *redisConfig.Redis
	queue *rabbitmq.QueueService
	log   *zap.Logger
}

// Open connects the enabled services, a failing service aborts the whole open
func Open(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Backends, error) {
	b := &Backends{log: log}

	if cfg.DB.Enabled {
		dbLogger := log.Named("DB")
		db, err := postgresConfig.New(ctx, cfg.DB, dbLogger)
		if err != nil {
			return nil, fmt.Errorf("error initializing database connection: %w", err)
		}
		b.db = db
		if err := db.Migrate(); err != nil {
			b.Close()
			return nil, fmt.Errorf("error migrating database: %w", err)
		}
		log.Info("Successfully connected to the database", zap.String("db", cfg.DB.Connection))
		b.Submissions = postgres.NewSubmissionRepository(db.Pool, *db.QueryBuilder, dbLogger)
		b.Records = postgres.NewFoldRecordRepository(db.Pool, dbLogger)
	} else {
		b.Submissions = memory.NewSubmissionRepository()
		b.Records = memory.NewFoldRecordRepository()
	}

	if cfg.Redis.Enabled {
		cache, err := redisConfig.New(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("error initializing cache connection: %w", err)
		}
		b.cache = cache
		log.Info("Successfully connected to the cache server", zap.String("address", cfg.Redis.Addr))
		b.Ledger = redisAdapter.NewSubmissionLedger(cache.Storage, cfg.Redis.LedgerTTL, log.Named("Ledger"))
	} else {
		b.Ledger = memory.NewLedger()
	}

	if cfg.AMQP.Enabled {
		queue, err := rabbitmq.NewQueueService(rabbitmq.Options{
			URL:          cfg.AMQP.URL,
			Exchange:     cfg.AMQP.Exchange,
			Queue:        cfg.AMQP.Queue,
			MaxRetries:   cfg.AMQP.MaxRetries,
			RequeueDelay: cfg.AMQP.RequeueDelay,
		}, log.Named("AMQP"))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("error initializing broker connection: %w", err)
		}
		b.queue = queue
		b.Publisher = queue
		b.Consumer = queue
	} else {
		bus := memory.NewEventBus(memoryEventBufferSize)
		b.Publisher = bus
		b.Consumer = bus
	}

	return b, nil
}

// Persistent reports whether submissions outlive the process
func (b *Backends) Persistent() bool {
	return b.db != nil
}

// Health checks every opened service
func (b *Backends) Health(ctx context.Context) error {
	if b.db != nil {
		if err := b.db.DBHealth(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if b.cache != nil {
		if err := b.cache.Health(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// Close releases every opened service
func (b *Backends) Close() {
	if b.queue != nil {
		if err := b.queue.Close(); err != nil {
			b.log.Warn("Error closing broker connection", zap.Error(err))
		}
	}
	if b.cache != nil {
		if err := b.cache.Close(); err != nil {
			b.log.Warn("Error closing cache connection", zap.Error(err))
		}
	}
	if b.db != nil {
		b.db.Close()
	}
}
