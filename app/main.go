package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-digest/app/api"
	"github.com/lysyi3m/rss-digest/app/broadcast"
	"github.com/lysyi3m/rss-digest/app/cfg"
	"github.com/lysyi3m/rss-digest/app/database"
	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/feed"
	"github.com/lysyi3m/rss-digest/app/graph"
	"github.com/lysyi3m/rss-digest/app/logbuf"
	"github.com/lysyi3m/rss-digest/app/nlp"
	"github.com/lysyi3m/rss-digest/app/pipeline"
	"github.com/lysyi3m/rss-digest/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// --help was requested
		return
	}

	logs := logbuf.NewRing(logbuf.DefaultCapacity)
	setupLogger(appCfg, logs)

	slog.Info("Starting RSS Digest server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", db.Path(), "schema_version", version, "dirty", dirty)

	registry := feed.NewRegistry(appCfg.SourcesFile)
	if err := registry.Load(); err != nil {
		slog.Error("Failed to load sources", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Sources loaded", "path", registry.Path(), "count", registry.Count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := registry.Watch(ctx); err != nil {
			slog.Warn("Source registry watch stopped", "error", err)
		}
	}()

	// Core components
	httpClient := &http.Client{Timeout: appCfg.FetchTimeoutDuration()}
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), feed.NewContentExtractor(), feed.FetcherOptions{
		UserAgent:   appCfg.UserAgent,
		Timeout:     appCfg.FetchTimeoutDuration(),
		ArticleRate: appCfg.ArticleRate,
	})

	llm := nlp.NewOpenAIClient(appCfg.LLMBaseURL, appCfg.LLMAPIKey)
	segmenter := nlp.NewProseSegmenter()
	translator := nlp.NewTranslator(appCfg.TargetLanguage, nlp.NewOpenAITranslationFactory(llm, appCfg.TranslationModel))
	summarizer := nlp.NewSummarizer(nlp.NewOpenAISummarizer(llm, appCfg.SummaryModel), segmenter)

	summaryRepo := database.NewSummaryRepository(db)
	artifacts := digest.NewFileStore(appCfg.OutputDir)
	writer := digest.NewWriter(artifacts, digest.NewRepositoryStore(summaryRepo))

	runner := pipeline.NewRunner(registry, fetcher, translator, summarizer, writer, pipeline.Options{
		MaxArticles:  appCfg.MaxArticles,
		MaxSentences: appCfg.MaxSentences,
	})

	extractor := graph.NewExtractor(graph.NewProseRecognizer(), segmenter)

	broadcaster := broadcast.NewService(
		summaryRepo,
		broadcast.NewNarrator(llm, appCfg.BroadcastModel),
		broadcast.NewSpeaker(llm, appCfg.TTSModel, appCfg.TTSVoice, appCfg.AudioDir),
	)

	// Background scheduler
	var export *tasks.GraphExport
	if appCfg.Neo4jURI != "" {
		sink, err := graph.NewNeo4jSink(appCfg.Neo4jURI, appCfg.Neo4jUser, appCfg.Neo4jPassword)
		if err != nil {
			slog.Error("Failed to configure graph export", "uri", appCfg.Neo4jURI, "error", err)
			os.Exit(1)
		}
		defer sink.Close()

		export = &tasks.GraphExport{
			Artifacts: artifacts,
			Extractor: extractor,
			Sink:      sink,
			Scope:     graph.ScopeSentence,
		}
	}

	scheduler := tasks.NewScheduler(runner, export, appCfg.SchedulerIntervalDuration())
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(runner, broadcaster, artifacts, extractor, registry, logs)
	router := api.NewServer(handler, appCfg.APIAccessKey, appCfg.AudioDir)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(appCfg *cfg.Cfg, logs *logbuf.Ring) {
	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}

	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(logbuf.NewHandler(console, logs, slog.LevelInfo)))
}
