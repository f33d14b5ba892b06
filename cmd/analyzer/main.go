package main

import (
	"chat-analyzer/classifier"
	"chat-analyzer/internal"
	"chat-analyzer/metrics"
	"chat-analyzer/observability"
	"chat-analyzer/parser"
	"chat-analyzer/report"
	"chat-analyzer/repositories"
	"chat-analyzer/sentiment"
	"chat-analyzer/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the calling shell.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analyzer terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and keeps os.Exit out of the way of deferred cleanups.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	renderOptions, err := report.LoadOptions()
	if err != nil {
		return exitConfig, fmt.Errorf("report config error: %w", err)
	}
	format, err := config.Format()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Parsing & analysis
	p, err := parser.New(format, log)
	if err != nil {
		return exitConfig, err
	}
	c, err := classifier.NewDefault(config.StopWords()...)
	if err != nil {
		return exitRuntime, err
	}
	scorer, err := sentiment.NewDefaultScorer()
	if err != nil {
		return exitRuntime, err
	}
	engine, err := metrics.New(c, scorer, metrics.Options{TopWords: config.TopWords, TopUsers: config.TopUsers})
	if err != nil {
		return exitConfig, err
	}

	// 3. Session storage (BadgerDB, in memory only)
	db, err := repositories.OpenInMemory()
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Debug("Closing BadgerDB...")
		_ = db.Close()
	}()

	monitoring := observability.NewMonitoringManager(log)
	service := services.NewAnalyzerService(
		log,
		p,
		engine,
		repositories.NewSessionRepository(db, log),
		func() (repositories.IMessageIndex, error) { return repositories.NewMessageIndex(log) },
		monitoring,
		config.MaxUploadBytes,
	)

	// 4. Upload, analyze, render
	raw, err := os.ReadFile(config.ExportFilepath)
	if err != nil {
		return exitRuntime, fmt.Errorf("read export: %w", err)
	}
	session, err := service.Upload(ctx, uuid.Nil, filepath.Base(config.ExportFilepath), raw)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = service.Close(session.ID)
	}()

	result, err := service.Analyze(ctx, session.ID, config.SelectedUser)
	if err != nil {
		return exitRuntime, err
	}
	renderer := report.NewRenderer(os.Stdout, renderOptions)
	renderer.Render(session, result)

	if config.SearchQuery != "" {
		hits, err := service.Search(ctx, session.ID, config.SearchQuery, config.SearchLimit)
		if err != nil {
			return exitRuntime, err
		}
		renderer.RenderSearch(config.SearchQuery, hits)
	}

	stats := monitoring.GetLatest()
	log.Debug("Run finished", "analyses", stats.Analyses, "rss_mb", stats.RSSMb, "alloc_mb", stats.AllocMemMb)
	return exitOK, nil
}
