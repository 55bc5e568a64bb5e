// Package app assembles the pipeline from configuration and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"newsflow/internal/ai"
	"newsflow/internal/config"
	"newsflow/internal/logger"
	"newsflow/internal/mail"
	"newsflow/internal/news"
	"newsflow/internal/prompt"
	"newsflow/internal/query"
	"newsflow/internal/retry"
	"newsflow/internal/search"
	"newsflow/internal/storage"
	"newsflow/internal/workflow"
)

// Run loads configuration, wires every component, and executes either the
// full digest run or a single topic. topicID is ignored when runAll is set.
func Run(ctx context.Context, topicID int, runAll bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Debug)

	client, err := buildClient(ctx, cfg)
	if err != nil {
		return err
	}

	searcher, err := search.NewGoogleSearcher(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
	if err != nil {
		return fmt.Errorf("init search client: %w", err)
	}

	prompts, err := prompt.LoadStore(cfg.PromptsPath)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	audit := prompt.NewAuditLog(cfg.AuditDir)

	source, sink, cleanup, err := buildStorage(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var sender mail.Sender
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		slog.Warn("SMTP_HOST not set, digests will not be sent")
	}

	retryCfg := retry.Config{
		MaxAttempts:   cfg.RetryAttempts,
		Delay:         cfg.RetryDelay,
		QuotaCooldown: cfg.QuotaCooldown,
	}

	wf := workflow.New(workflow.Deps{
		Optimizer:  query.NewOptimizer(client, prompts, audit, retryCfg),
		Searcher:   searcher,
		Cleaner:    news.NewCleaner(),
		Translator: news.NewTranslator(client, prompts, audit),
		Summarizer: news.NewSummarizer(client, prompts, audit),
		Source:     source,
		Sink:       sink,
		Sender:     sender,
	}, workflow.Options{
		KeywordBatchSize: cfg.KeywordBatchSize,
		SearchMaxResults: cfg.SearchMaxResults,
		SearchTimeout:    cfg.SearchTimeout,
		GenerateTimeout:  cfg.GenerateTimeout,
		TopicRetry:       retryCfg,
	})

	if runAll {
		return wf.ProcessAll(ctx)
	}
	return wf.ProcessOne(ctx, topicID)
}

// buildClient prefers Gemini and chains the OpenAI fallback behind it when
// both keys are configured.
func buildClient(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	var providers []ai.Client

	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		providers = append(providers, gemini)
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no generation provider configured")
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	return ai.NewFallback(providers...), nil
}

// buildStorage returns the Postgres-backed source and sink when a database
// is configured, and the read-only topics file otherwise.
func buildStorage(cfg *config.Config) (storage.TopicSource, storage.Sink, func(), error) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init postgres: %w", err)
		}
		return store, store, func() { store.Close() }, nil
	}

	topics, err := config.LoadTopics(cfg.TopicsPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load topics: %w", err)
	}
	slog.Info("using topics file, results will not be persisted", "path", cfg.TopicsPath)
	return storage.NewFileSource(topics), nil, func() {}, nil
}
