package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/feed"
	"github.com/lysyi3m/rss-digest/app/metrics"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	SuccessMessage = "Pipeline executed successfully."
)

type SourceLoader interface {
	Load() error
	Sources() []feed.Source
}

type ArticleFetcher interface {
	FetchAll(ctx context.Context, sources []feed.Source, maxArticles int) []feed.RawArticle
}

type ArticleTranslator interface {
	Translate(ctx context.Context, article feed.RawArticle) string
}

type TextSummarizer interface {
	Summarize(ctx context.Context, text string, maxSentences int) string
}

type DigestWriter interface {
	Write(ctx context.Context, date time.Time, entries []digest.Entry) (digest.SyncReport, error)
}

// ProcessedArticle is a fetched article plus what each stage produced for it.
// Stages only fill in their own field.
type ProcessedArticle struct {
	feed.RawArticle
	NormalizedText string
	SummaryText    string
}

func (p ProcessedArticle) Entry() digest.Entry {
	return digest.Entry{
		Title:     p.Title,
		Source:    p.SourceName,
		Summary:   p.SummaryText,
		URL:       p.CanonicalURL,
		Published: p.PublishedAt,
	}
}

type Options struct {
	MaxArticles  int
	MaxSentences int
}

// Result reports one pipeline run. Status is "success" or "error"; Message
// carries the failure reason on error.
type Result struct {
	RunID    string `json:"run_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Date     string `json:"date,omitempty"`
	Articles int    `json:"articles"`
	Added    int    `json:"added"`

	Processed []ProcessedArticle `json:"-"`
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Runner executes fetch, translate, summarize and write as one run. Runs are
// serialized.
type Runner struct {
	sources    SourceLoader
	fetcher    ArticleFetcher
	translator ArticleTranslator
	summarizer TextSummarizer
	writer     DigestWriter
	opts       Options
	now        func() time.Time

	mu sync.Mutex
}

func NewRunner(sources SourceLoader, fetcher ArticleFetcher, translator ArticleTranslator, summarizer TextSummarizer, writer DigestWriter, opts Options) *Runner {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 10
	}
	if opts.MaxSentences <= 0 {
		opts.MaxSentences = 3
	}

	return &Runner{
		sources:    sources,
		fetcher:    fetcher,
		translator: translator,
		summarizer: summarizer,
		writer:     writer,
		opts:       opts,
		now:        time.Now,
	}
}

func (r *Runner) Run(ctx context.Context) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := Result{RunID: uuid.New().String()}
	logger := slog.With("run_id", result.RunID)

	logger.Info("Pipeline started")

	processed, date, added, err := r.run(ctx, logger)
	result.Processed = processed
	result.Articles = len(processed)
	result.Added = added
	if !date.IsZero() {
		result.Date = date.Format(digest.DateLayout)
	}

	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		logger.Error("Pipeline failed", "error", err, "duration", time.Since(start))
	} else {
		result.Status = StatusSuccess
		result.Message = SuccessMessage
		logger.Info("Pipeline completed", "articles", result.Articles, "added", result.Added, "duration", time.Since(start))
	}

	metrics.PipelineRuns.WithLabelValues(result.Status).Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	return result
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger) ([]ProcessedArticle, time.Time, int, error) {
	if err := r.sources.Load(); err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("failed to load sources: %w", err)
	}

	sources := r.sources.Sources()
	logger.Info("Fetching articles", "sources", len(sources), "max_articles", r.opts.MaxArticles)

	articles := r.fetcher.FetchAll(ctx, sources, r.opts.MaxArticles)
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("run cancelled during fetch, digest left unchanged: %w", err)
	}

	processed := make([]ProcessedArticle, 0, len(articles))
	for _, article := range articles {
		item := ProcessedArticle{RawArticle: article}
		item.NormalizedText = r.translator.Translate(ctx, item.RawArticle)
		item.SummaryText = r.summarizer.Summarize(ctx, item.NormalizedText, r.opts.MaxSentences)

		logger.Debug("Article processed",
			"title", item.Title,
			"source", item.SourceName,
			"normalized_chars", len(item.NormalizedText),
			"summary_chars", len(item.SummaryText))

		processed = append(processed, item)
	}

	if err := ctx.Err(); err != nil {
		return processed, time.Time{}, 0, fmt.Errorf("run cancelled during processing, digest left unchanged: %w", err)
	}

	entries := make([]digest.Entry, 0, len(processed))
	for _, item := range processed {
		entries = append(entries, item.Entry())
	}

	date := r.now()
	report, err := r.writer.Write(ctx, date, entries)
	if err != nil {
		return processed, date, 0, fmt.Errorf("failed to write digest: %w", err)
	}
	if report.Err != nil {
		logger.Warn("Summary storage incomplete", "error", report.Err, "inserted", report.Inserted)
	}

	return processed, date, report.Inserted, nil
}
