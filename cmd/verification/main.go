package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"time"

	"github.com/crabzie/foldbatch/config/logger"
	postgresConfig "github.com/crabzie/foldbatch/config/storage/postgresql"
	redisConfig "github.com/crabzie/foldbatch/config/storage/redis"
	config "github.com/crabzie/foldbatch/config/utils"
	"github.com/crabzie/foldbatch/internal/adapter/queue/rabbitmq"
	"github.com/crabzie/foldbatch/internal/adapter/storage/postgres"
	redisAdapter "github.com/crabzie/foldbatch/internal/adapter/storage/redis"
	"github.com/crabzie/foldbatch/internal/core/domain"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// 1. Setup Logger & Config
	appConfig := config.New(*configPath)
	log := logger.Build(appConfig.Logger, "verification")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Info("Starting Verification...")
	failed := false

	// 2. Test Slurm binaries
	log.Info("--- Testing Slurm ---")
	for _, bin := range []string{appConfig.Slurm.Sbatch, appConfig.Slurm.Squeue, appConfig.Slurm.Sacct} {
		if path, err := exec.LookPath(bin); err != nil {
			log.Error("X Slurm: binary not found", zap.String("binary", bin), zap.Error(err))
			failed = true
		} else {
			log.Info("✓ Slurm: binary found", zap.String("path", path))
		}
	}

	// 3. Test profiles
	log.Info("--- Testing Profiles ---")
	for name, p := range appConfig.Profiles {
		job := p.Job.Descriptor()
		if job.Name == "" {
			job.Name = name
		}
		if err := job.Validate(); err != nil {
			log.Error("X Profile: invalid job descriptor", zap.String("profile", name), zap.Error(err))
			failed = true
		} else {
			log.Info("✓ Profile: valid", zap.String("profile", name), zap.String("partition", job.Partition))
		}
	}

	// 4. Test Postgres
	log.Info("--- Testing Postgres ---")
	if !appConfig.DB.Enabled {
		log.Info("- Postgres: disabled")
	} else if dbService, err := postgresConfig.New(ctx, appConfig.DB, log.Named("DB")); err != nil {
		log.Error("X Postgres: Connection Failed", zap.Error(err))
		failed = true
	} else {
		if err := dbService.Migrate(); err != nil {
			log.Error("X Postgres: Migration Failed", zap.Error(err))
			failed = true
		}
		repo := postgres.NewSubmissionRepository(dbService.Pool, *dbService.QueryBuilder, log)
		if subs, err := repo.ListActive(ctx); err != nil {
			log.Error("X Postgres: List Submissions Failed", zap.Error(err))
			failed = true
		} else {
			log.Info("✓ Postgres: List Submissions Success", zap.Int("active", len(subs)))
		}
		dbService.Close()
	}

	// 5. Test Redis
	log.Info("--- Testing Redis ---")
	if !appConfig.Redis.Enabled {
		log.Info("- Redis: disabled")
	} else if cache, err := redisConfig.New(ctx, appConfig.Redis); err != nil {
		log.Error("X Redis: Connection Failed", zap.Error(err))
		failed = true
	} else {
		ledger := redisAdapter.NewSubmissionLedger(cache.Storage, time.Minute, log)
		probe := domain.NewSubmission(0, "verification.faa", "verification", "verification", 1)
		if err := ledger.MarkSubmitted(ctx, probe.InputFile, probe); err != nil {
			log.Error("X Redis: Mark Submitted Failed", zap.Error(err))
			failed = true
		} else if ok, err := ledger.IsSubmitted(ctx, probe.InputFile); err != nil || !ok {
			log.Error("X Redis: Ledger Lookup Failed", zap.Bool("found", ok), zap.Error(err))
			failed = true
		} else {
			log.Info("✓ Redis: Ledger Success")
		}
		cache.Close()
	}

	// 6. Test RabbitMQ
	log.Info("--- Testing RabbitMQ ---")
	if !appConfig.AMQP.Enabled {
		log.Info("- RabbitMQ: disabled")
	} else if queue, err := rabbitmq.NewQueueService(rabbitmq.Options{
		URL:        appConfig.AMQP.URL,
		Exchange:   appConfig.AMQP.Exchange,
		Queue:      appConfig.AMQP.Queue,
		MaxRetries: 1,
	}, log); err != nil {
		log.Error("X RabbitMQ: Connection Failed", zap.Error(err))
		failed = true
	} else {
		log.Info("✓ RabbitMQ: Connection Success", zap.String("exchange", appConfig.AMQP.Exchange))
		queue.Close()
	}

	if failed {
		log.Error("Verification Failed.")
		os.Exit(1)
	}
	log.Info("Verification Complete.")
}
