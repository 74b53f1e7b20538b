package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/crabzie/foldbatch/config/logger"
	config "github.com/crabzie/foldbatch/config/utils"
	"github.com/crabzie/foldbatch/internal/adapter/executor"
	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/service"
	"go.uber.org/zap"
)

// runner launches one delegated program inside the active profile's
// environment and exits with its exit code, e.g.
//
//	runner -profile gaudi -- run_esmfold.py input.faa
func main() {
	configPath := flag.String("config", "", "path to the config file")
	profile := flag.String("profile", "", "environment profile to use, overrides the config")
	program := flag.String("program", "", "program to run, defaults to the runner config then the profile interpreter")
	flag.Parse()

	// the child is killed when the runner is interrupted
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	appConfig := config.New(*configPath)
	if *profile != "" {
		appConfig.Profile = *profile
	}
	baseLogger := logger.Build(appConfig.Logger, "runner")

	var env domain.Environment
	if active, err := appConfig.ActiveProfile(); err != nil {
		zap.L().Warn("No job profile, running in the current environment", zap.Error(err))
	} else {
		env = active.Env.Environment()
	}

	prog, args := *program, flag.Args()
	if prog == "" && appConfig.Runner.Program != "" {
		prog = appConfig.Runner.Program
		args = append(append([]string{}, appConfig.Runner.Args...), args...)
	}

	proc := executor.NewProcessRunner("", os.Stdout, os.Stderr, baseLogger.Named("Executor"))
	runner := service.NewRunnerService(proc, env, os.Stdout, baseLogger.Named("Runner"))

	code, _ := runner.Run(rootCtx, prog, args)
	baseLogger.Sync()
	os.Exit(code)
}
