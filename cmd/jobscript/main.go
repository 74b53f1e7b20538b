package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/crabzie/foldbatch/config/logger"
	config "github.com/crabzie/foldbatch/config/utils"
	"github.com/crabzie/foldbatch/internal/adapter/scheduler/slurm"
	"go.uber.org/zap"
)

// jobscript renders the active profile as a standalone job script running
// the given command, e.g.
//
//	jobscript -profile gpu -timed -out sub.sh -submit run.py
func main() {
	configPath := flag.String("config", "", "path to the config file")
	profile := flag.String("profile", "", "job profile to use, overrides the config")
	name := flag.String("name", "", "job name, defaults to the profile name")
	out := flag.String("out", "", "write the script to this file instead of stdout")
	array := flag.Int("array", 0, "submit as an array of this many tasks")
	timed := flag.Bool("timed", false, "wrap the command with the runner to report elapsed hours")
	submit := flag.Bool("submit", false, "submit the written script with sbatch, requires -out")
	flag.Parse()

	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	appConfig := config.New(*configPath)
	if *profile != "" {
		appConfig.Profile = *profile
	}
	baseLogger := logger.Build(appConfig.Logger, "jobscript")

	active, err := appConfig.ActiveProfile()
	if err != nil {
		zap.L().Error("Error selecting job profile", zap.Error(err))
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		zap.L().Error("No command given")
		os.Exit(2)
	}
	if *submit && *out == "" {
		zap.L().Error("-submit needs -out")
		os.Exit(2)
	}

	job := active.Job.Descriptor()
	if *name != "" {
		job.Name = *name
	} else if job.Name == "" {
		job.Name = appConfig.Profile
	}
	if *array > 0 {
		job = job.WithArray(*array)
	}
	env := active.Env.Environment()

	command := env.Interpreter + " " + strings.Join(flag.Args(), " ")
	if *timed {
		runner, err := runnerPath(appConfig.Runner.Binary)
		if err != nil {
			zap.L().Error("Error locating the runner binary, set runner.binary", zap.Error(err))
			os.Exit(1)
		}
		command = timedCommand(runner, appConfig.Profile, flag.Args())
	}

	var script bytes.Buffer
	if err := slurm.NewRenderer().Render(&script, job, env, command); err != nil {
		zap.L().Error("Error rendering job script", zap.Error(err))
		os.Exit(1)
	}

	if *out == "" {
		os.Stdout.Write(script.Bytes())
		return
	}
	if err := os.WriteFile(*out, script.Bytes(), 0o755); err != nil {
		zap.L().Error("Error writing job script", zap.String("path", *out), zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("Job script written", zap.String("path", *out))

	if !*submit {
		return
	}
	scheduler := slurm.NewClient(slurm.NewExecCommander(), slurm.Options{
		Sbatch:        appConfig.Slurm.Sbatch,
		SubmitRetries: appConfig.Slurm.SubmitRetries,
		RetryDelay:    appConfig.Slurm.RetryDelay,
	}, baseLogger.Named("Slurm"))
	jobID, err := scheduler.Submit(rootCtx, filepath.Dir(*out), filepath.Base(*out))
	if err != nil {
		zap.L().Error("Error submitting job script", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(jobID)
}

// timedCommand wraps args with the runner. The "--" keeps arguments starting
// with '-' away from the runner's own flags.
func timedCommand(runner, profile string, args []string) string {
	return fmt.Sprintf("%s -profile %s -- %s", runner, profile, strings.Join(args, " "))
}

// runnerPath returns the configured runner binary, or the runner installed
// next to this executable. Job scripts run with --export=NONE, so PATH
// lookups are not reliable there.
func runnerPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), "runner"), nil
}
