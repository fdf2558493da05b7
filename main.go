package main

import (
	"context"
	"flag"
	"os"

	"customer-analytics/config"
	"customer-analytics/services"
	"customer-analytics/storage"
	"customer-analytics/utils"
)

func main() {
	// ================== Bootstrap ====================
	configPath := flag.String("config", "", "optional YAML config file")
	sourceKind := flag.String("source", "", "dataset source: csv, postgres or mysql")
	dataDir := flag.String("data", "", "directory containing the CSV dataset")
	resultsPath := flag.String("out", "", "path for the JSON results file")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	cfg := config.Load()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			utils.NewLogger(false).Error("Cannot load config: %v", err)
			os.Exit(1)
		}
	}
	if *sourceKind != "" {
		cfg.Source = *sourceKind
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *resultsPath != "" {
		cfg.ResultsPath = *resultsPath
	}
	if *verbose {
		cfg.Verbose = true
	}

	logger := utils.NewLogger(cfg.Verbose)
	logger.Info("Customer Analytics Prediction Pipeline")
	logger.Info("Source: %s | Top products: %d | Retries: %d",
		cfg.Source, cfg.TopProducts, cfg.MaxRetries)

	ctx := context.Background()

	// =================== Dataset loading ========================
	var source storage.DatasetSource
	var err error
	switch cfg.Source {
	case "csv":
		source = storage.NewCSVSource(cfg.DataDir, logger)
	case "postgres":
		source, err = storage.NewPostgresSource(cfg.PostgresDSN, cfg.MaxRetries, logger)
	case "mysql":
		source, err = storage.NewMySQLSource(cfg.MySQLDSN, cfg.MaxRetries, logger)
	default:
		logger.Error("Unsupported dataset source: %s", cfg.Source)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Cannot open dataset source: %v", err)
		os.Exit(1)
	}
	defer source.Close()

	dataset, err := source.Load(ctx)
	if err != nil {
		logger.Error("Failed to load dataset: %v", err)
		os.Exit(1)
	}

	// =============== Prediction pipeline ===================
	pipeline := services.NewPipeline(logger, cfg.TopProducts, cfg.Verbose)
	results, err := pipeline.Run(ctx, dataset)
	if err != nil {
		logger.Error("Analysis failed: %v", err)
		os.Exit(1)
	}

	// ==== Report & persistence ============================
	services.PrintResults(results)

	jsonWriter := storage.NewJSONWriter(cfg.ResultsPath, logger)
	if err := jsonWriter.Save(results); err != nil {
		logger.Error("Failed to write results file: %v", err)
		// Non-fatal: continue to DB storage
	}

	if cfg.SaveToPostgres {
		sink, err := storage.NewPostgresSink(cfg.PostgresDSN, cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL sink: %v", err)
			os.Exit(1)
		}
		defer sink.Close()
		if err := sink.Save(results); err != nil {
			logger.Error("Failed to store run in PostgreSQL: %v", err)
			os.Exit(1)
		}
	}
}
