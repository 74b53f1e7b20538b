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
	"github.com/crabzie/foldbatch/internal/adapter/results"
	"github.com/crabzie/foldbatch/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	out := flag.String("out", "", "output path without the .csv.gz suffix, overrides the config")
	flag.Parse()

	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	appConfig := config.New(*configPath)
	baseLogger := logger.Build(appConfig.Logger, "collector")

	services, err := backends.Open(rootCtx, appConfig, baseLogger)
	if err != nil {
		zap.L().Error("Error initializing backends", zap.Error(err))
		os.Exit(1)
	}
	defer services.Close()

	ws := appConfig.Workspace
	outPath := ws.ResultsOut
	if *out != "" {
		outPath = *out
	}

	collector := service.NewCollectorService(
		fasta.NewSource(ws.DataDir, ws.Extension, baseLogger.Named("FASTA")),
		results.NewReader(baseLogger.Named("Results")),
		results.NewCSVWriter(baseLogger.Named("CSV")),
		services.Records,
		results.Suffix,
		baseLogger.Named("Collector"),
	)

	report, err := collector.Collect(rootCtx, outPath)
	if err != nil {
		zap.L().Error("Error collecting results", zap.Error(err))
		services.Close()
		os.Exit(1)
	}
	zap.L().Info("Results collected",
		zap.Int("files", report.Files),
		zap.Int("entries", report.Entries),
		zap.Int("records", report.Records),
		zap.Int64("stored", report.Stored),
		zap.String("out", outPath+".csv.gz"))
}
