// Package workflow orchestrates the per-topic news pipeline and the
// multi-topic digest run.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsflow/internal/mail"
	"newsflow/internal/metrics"
	"newsflow/internal/news"
	"newsflow/internal/query"
	"newsflow/internal/render"
	"newsflow/internal/retry"
	"newsflow/internal/search"
	"newsflow/internal/storage"
)

// ErrEmptyStage marks a stage that legitimately produced nothing. It is
// terminal for the topic and never retried: searching again for news that
// is not there only burns quota.
var ErrEmptyStage = errors.New("stage produced no results")

// Optimizer refines keyword batches into search queries.
type Optimizer interface {
	OptimizeBatches(ctx context.Context, batches []string) []string
}

// Translator converts clean items into translated items.
type Translator interface {
	Translate(ctx context.Context, items []news.CleanItem) []news.TranslatedItem
}

// Summarizer filters translated items and attaches summaries.
type Summarizer interface {
	FilterAndSummarize(ctx context.Context, items []news.TranslatedItem) []news.FinalArticle
}

// Options tunes the pipeline independently of its collaborators.
type Options struct {
	KeywordBatchSize int
	SearchMaxResults int
	// SearchTimeout bounds one search query; GenerateTimeout bounds one
	// generation stage, which runs much longer in practice.
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
	// TopicRetry guards the whole per-topic pipeline in the all-topics run.
	TopicRetry retry.Config
}

// Workflow wires the pipeline stages to the topic source, the persistence
// sink, and the mail transport.
type Workflow struct {
	optimizer  Optimizer
	searcher   search.Searcher
	cleaner    *news.Cleaner
	translator Translator
	summarizer Summarizer
	source     storage.TopicSource
	sink       storage.Sink // optional
	sender     mail.Sender  // optional
	opts       Options
}

type Deps struct {
	Optimizer  Optimizer
	Searcher   search.Searcher
	Cleaner    *news.Cleaner
	Translator Translator
	Summarizer Summarizer
	Source     storage.TopicSource
	Sink       storage.Sink
	Sender     mail.Sender
}

func New(deps Deps, opts Options) *Workflow {
	if deps.Cleaner == nil {
		deps.Cleaner = news.NewCleaner()
	}
	if opts.KeywordBatchSize <= 0 {
		opts.KeywordBatchSize = 10
	}
	if opts.SearchMaxResults <= 0 {
		opts.SearchMaxResults = 10
	}
	if opts.TopicRetry.MaxAttempts <= 0 {
		opts.TopicRetry = retry.Default()
	}
	return &Workflow{
		optimizer:  deps.Optimizer,
		searcher:   deps.Searcher,
		cleaner:    deps.Cleaner,
		translator: deps.Translator,
		summarizer: deps.Summarizer,
		source:     deps.Source,
		sink:       deps.Sink,
		sender:     deps.Sender,
		opts:       opts,
	}
}

// ProcessTopic runs the full stage sequence for one topic and returns its
// final articles. An empty result at any stage ends the topic with an
// ErrEmptyStage-wrapped error; the caller decides whether that is worth a
// log line or an abort.
func (w *Workflow) ProcessTopic(ctx context.Context, topic storage.Topic) ([]news.FinalArticle, error) {
	slog.Info("processing topic", "topic", topic.Name, "id", topic.ID, "keywords", len(topic.Keywords))

	batches := query.GroupKeywords(topic.Keywords, w.opts.KeywordBatchSize)
	if len(batches) == 0 {
		return nil, fmt.Errorf("topic %s has no keywords: %w", topic.Name, ErrEmptyStage)
	}

	genCtx, cancel := w.stageContext(ctx, w.opts.GenerateTimeout)
	optimized := w.optimizer.OptimizeBatches(genCtx, batches)
	cancel()
	if len(optimized) == 0 {
		return nil, fmt.Errorf("no optimized queries for topic %s: %w", topic.Name, ErrEmptyStage)
	}
	slog.Info("queries optimized", "topic", topic.Name, "queries", len(optimized))

	searchCtx, cancel := w.stageContext(ctx, w.opts.SearchTimeout)
	candidates := search.RunMultiple(searchCtx, w.searcher, optimized, w.opts.SearchMaxResults)
	cancel()
	metrics.Global.AddSearchQueries(len(optimized))
	metrics.Global.AddCandidates(len(candidates))
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no news results for topic %s: %w", topic.Name, ErrEmptyStage)
	}
	slog.Info("search done", "topic", topic.Name, "candidates", len(candidates))

	cleaned := w.cleaner.Clean(candidates, optimized)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no clean news for topic %s: %w", topic.Name, ErrEmptyStage)
	}
	slog.Info("cleaning done", "topic", topic.Name, "items", len(cleaned))

	genCtx, cancel = w.stageContext(ctx, w.opts.GenerateTimeout)
	translated := w.translator.Translate(genCtx, cleaned)
	cancel()
	if len(translated) == 0 {
		return nil, fmt.Errorf("no translated news for topic %s: %w", topic.Name, ErrEmptyStage)
	}
	slog.Info("translation done", "topic", topic.Name, "items", len(translated))

	genCtx, cancel = w.stageContext(ctx, w.opts.GenerateTimeout)
	articles := w.summarizer.FilterAndSummarize(genCtx, translated)
	cancel()
	if len(articles) == 0 {
		return nil, fmt.Errorf("no final articles for topic %s: %w", topic.Name, ErrEmptyStage)
	}
	slog.Info("filter and summarize done", "topic", topic.Name, "articles", len(articles))

	return articles, nil
}

// ProcessAll runs every topic in fetch order, accumulates articles per
// active subscriber, and sends one consolidated digest per user after all
// topics finish. A failed topic is logged and skipped; it never stops the
// run.
func (w *Workflow) ProcessAll(ctx context.Context) error {
	started := time.Now()

	topics, err := w.source.Topics(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("fetch topics: %w", err)
	}
	slog.Info("starting digest run", "topics", len(topics))

	accumulator := NewDigestSet()

	for _, topic := range topics {
		articles, err := w.processTopicWithRetry(ctx, topic)
		if err != nil {
			if errors.Is(err, ErrEmptyStage) {
				slog.Warn("topic produced nothing, skipping", "topic", topic.Name, "reason", err)
			} else {
				slog.Error("topic failed after retries", "topic", topic.Name, "error", err)
			}
			metrics.Global.IncrementTopicsFailed()
			continue
		}
		metrics.Global.IncrementTopicsProcessed()

		subscribers, err := w.source.ActiveSubscribers(ctx, topic.ID)
		if err != nil {
			slog.Error("subscriber lookup failed", "topic", topic.Name, "error", err)
			continue
		}
		if len(subscribers) == 0 {
			slog.Info("topic has no active subscribers", "topic", topic.Name)
			continue
		}

		for _, email := range subscribers {
			accumulator.Add(email, articles)
		}

		w.persist(ctx, articles, subscribers, topic.Name)
		slog.Info("topic processed", "topic", topic.Name, "articles", len(articles), "subscribers", len(subscribers))
	}

	w.dispatch(accumulator)

	metrics.Global.RecordRun(time.Since(started))
	slog.Info("digest run finished", "duration", time.Since(started))
	return nil
}

// ProcessOne runs the pipeline for a single topic and sends that topic's
// digest to its subscribers, without cross-topic accumulation.
func (w *Workflow) ProcessOne(ctx context.Context, topicID int) error {
	topics, err := w.source.Topics(ctx)
	if err != nil {
		return fmt.Errorf("fetch topics: %w", err)
	}

	var topic *storage.Topic
	for i := range topics {
		if topics[i].ID == topicID {
			topic = &topics[i]
			break
		}
	}
	if topic == nil {
		return fmt.Errorf("unknown topic id %d", topicID)
	}

	articles, err := w.ProcessTopic(ctx, *topic)
	if err != nil {
		if errors.Is(err, ErrEmptyStage) {
			slog.Warn("workflow aborted", "topic", topic.Name, "reason", err)
			return nil
		}
		return err
	}

	subscribers, err := w.source.ActiveSubscribers(ctx, topic.ID)
	if err != nil {
		return fmt.Errorf("subscriber lookup: %w", err)
	}
	if len(subscribers) == 0 {
		slog.Info("topic has no active subscribers", "topic", topic.Name)
		return nil
	}

	accumulator := NewDigestSet()
	for _, email := range subscribers {
		accumulator.Add(email, articles)
	}
	w.persist(ctx, articles, subscribers, topic.Name)
	w.dispatch(accumulator)

	metrics.Global.IncrementTopicsProcessed()
	return nil
}

// processTopicWithRetry wraps the whole per-topic pipeline in the retry
// policy. Empty-stage outcomes are terminal and bypass the retry budget.
func (w *Workflow) processTopicWithRetry(ctx context.Context, topic storage.Topic) ([]news.FinalArticle, error) {
	var articles []news.FinalArticle

	err := retry.Do(ctx, w.opts.TopicRetry, func() error {
		var runErr error
		articles, runErr = w.ProcessTopic(ctx, topic)
		if runErr != nil && errors.Is(runErr, ErrEmptyStage) {
			// Surface immediately; Do would just re-run a pipeline that
			// found nothing.
			articles = nil
			return nil
		}
		return runErr
	})
	if err != nil {
		return nil, err
	}
	if articles == nil {
		return nil, fmt.Errorf("topic %s: %w", topic.Name, ErrEmptyStage)
	}
	return articles, nil
}

func (w *Workflow) persist(ctx context.Context, articles []news.FinalArticle, recipients []string, topicLabel string) {
	if w.sink == nil {
		return
	}
	result, err := w.sink.StoreNews(ctx, articles, recipients, topicLabel)
	if err != nil {
		slog.Error("failed storing news", "topic", topicLabel, "error", err)
		return
	}
	slog.Info("news stored", "topic", topicLabel, "news", result.NewsCount, "emails", result.EmailCount)
}

// dispatch renders and sends one digest per accumulated recipient. Users
// with no articles are skipped; send failures are logged and never retried.
func (w *Workflow) dispatch(accumulator *DigestSet) {
	if w.sender == nil {
		return
	}

	for _, recipient := range accumulator.Recipients() {
		articles := accumulator.Articles(recipient)
		if len(articles) == 0 {
			continue
		}

		htmlBody, err := render.Digest(articles, "Top News")
		if err != nil {
			slog.Error("failed rendering digest", "recipient", recipient, "error", err)
			continue
		}

		if err := w.sender.Send(recipient, "Top News", htmlBody); err != nil {
			slog.Error("failed sending digest", "recipient", recipient, "error", err)
			continue
		}
		metrics.Global.IncrementDigestEmailsSent()
		metrics.Global.AddArticlesDelivered(len(articles))
		slog.Info("digest sent", "recipient", recipient, "articles", len(articles))
	}
}

func (w *Workflow) stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
