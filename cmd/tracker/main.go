package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crabzie/foldbatch/config/backends"
	"github.com/crabzie/foldbatch/config/logger"
	config "github.com/crabzie/foldbatch/config/utils"
	"github.com/crabzie/foldbatch/internal/adapter/scheduler/slurm"
	"github.com/crabzie/foldbatch/internal/core/service"
	"go.uber.org/zap"
)

// _readinessDrainDelay is time to sleep while context shutdown message propagate
// _defaultPollInterval is used when the config sets no positive interval
const (
	_readinessDrainDelay = 2 * time.Second
	_defaultPollInterval = time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	once := flag.Bool("once", false, "poll the scheduler once and exit")
	flag.Parse()

	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	appConfig := config.New(*configPath)
	baseLogger := logger.Build(appConfig.Logger, "tracker")
	zap.L().Info("Starting the application", zap.String("app", appConfig.App.Name), zap.String("env", appConfig.App.Env), zap.String("owner", appConfig.App.Owner))

	services, err := backends.Open(rootCtx, appConfig, baseLogger)
	if err != nil {
		zap.L().Error("Error initializing backends", zap.Error(err))
		os.Exit(1)
	}
	defer services.Close()
	if !services.Persistent() && !appConfig.AMQP.Enabled {
		zap.L().Warn("Neither database nor broker enabled, the tracker has nothing to follow")
	}

	scheduler := slurm.NewClient(slurm.NewExecCommander(), slurm.Options{
		Sbatch: appConfig.Slurm.Sbatch,
		Squeue: appConfig.Slurm.Squeue,
		Sacct:  appConfig.Slurm.Sacct,
	}, baseLogger.Named("Slurm"))

	tracker := service.NewTrackerService(
		services.Submissions,
		scheduler,
		services.Publisher,
		services.Consumer,
		baseLogger.Named("Tracker"),
	)

	if *once {
		if err := tracker.Poll(rootCtx); err != nil {
			zap.L().Error("Error polling submissions", zap.Error(err))
			services.Close()
			os.Exit(1)
		}
		return
	}

	interval := appConfig.Slurm.PollInterval
	if interval <= 0 {
		interval = _defaultPollInterval
	}

	// Blocks until ctx cancelation
	if err := tracker.StartTracker(rootCtx, interval); err != nil {
		zap.L().Error("Error starting tracker", zap.Error(err))
		services.Close()
		os.Exit(1)
	}

	// Wait for in-flight deliveries to be acked
	time.Sleep(_readinessDrainDelay)
	zap.L().Info("Graceful shutdown complete.")
}
