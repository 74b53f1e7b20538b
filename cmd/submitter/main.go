package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/crabzie/foldbatch/config/backends"
	"github.com/crabzie/foldbatch/config/logger"
	config "github.com/crabzie/foldbatch/config/utils"
	"github.com/crabzie/foldbatch/internal/adapter/fasta"
	"github.com/crabzie/foldbatch/internal/adapter/scheduler/slurm"
	"github.com/crabzie/foldbatch/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	profile := flag.String("profile", "", "job profile to use, overrides the config")
	dryRun := flag.Bool("dry-run", false, "prepare the job folders without calling sbatch")
	force := flag.Bool("force", false, "resubmit input files the ledger already knows")
	flag.Parse()

	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// Init config
	appConfig := config.New(*configPath)
	if *profile != "" {
		appConfig.Profile = *profile
	}
	baseLogger := logger.Build(appConfig.Logger, "submitter")
	zap.L().Info("Starting the application", zap.String("app", appConfig.App.Name), zap.String("env", appConfig.App.Env), zap.String("profile", appConfig.Profile))

	active, err := appConfig.ActiveProfile()
	if err != nil {
		zap.L().Error("Error selecting job profile", zap.Error(err))
		os.Exit(1)
	}

	// Init storage & messaging
	services, err := backends.Open(rootCtx, appConfig, baseLogger)
	if err != nil {
		zap.L().Error("Error initializing backends", zap.Error(err))
		os.Exit(1)
	}
	defer services.Close()

	ws := appConfig.Workspace
	source := fasta.NewSource(ws.DataDir, ws.Extension, baseLogger.Named("FASTA"))
	scheduler := slurm.NewClient(slurm.NewExecCommander(), slurm.Options{
		Sbatch:        appConfig.Slurm.Sbatch,
		Squeue:        appConfig.Slurm.Squeue,
		Sacct:         appConfig.Slurm.Sacct,
		SubmitRetries: appConfig.Slurm.SubmitRetries,
		RetryDelay:    appConfig.Slurm.RetryDelay,
	}, baseLogger.Named("Slurm"))

	submitter := service.NewSubmitterService(
		source,
		slurm.NewRenderer(),
		scheduler,
		services.Submissions,
		services.Ledger,
		services.Publisher,
		service.SubmitterOptions{
			WorkDir:       ws.WorkDir,
			WorkerScript:  ws.WorkerScript,
			ScriptName:    ws.ScriptName,
			FolderPattern: ws.FolderPattern,
			Profile:       appConfig.Profile,
			Job:           active.Job.Descriptor(),
			Env:           active.Env.Environment(),
			DryRun:        *dryRun,
			Force:         *force,
		},
		baseLogger.Named("Submitter"),
	)

	report, err := submitter.SubmitAll(rootCtx)
	if report != nil {
		zap.L().Info("Submission finished",
			zap.Int("submitted", len(report.Submitted)),
			zap.Int("skipped", len(report.Skipped)))
	}
	if err != nil {
		zap.L().Error("Some input files could not be submitted", zap.Error(err))
		services.Close()
		os.Exit(1)
	}
}
