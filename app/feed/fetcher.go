package feed

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/rss-digest/app/metrics"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	maxResponseBytes    = 10 << 20
)

// FetchError describes a failure scoped to one source or one entry of a source.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source %q (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result holds either a resolved article or the error that prevented it.
type Result struct {
	Article *RawArticle
	Err     error
}

type FetcherOptions struct {
	UserAgent string
	// Timeout bounds each feed and article request. Zero means DefaultFetchTimeout.
	Timeout time.Duration
	// ArticleRate limits article downloads per second. Zero disables limiting.
	ArticleRate float64
}

type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	extractor  *ContentExtractor
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

func NewFetcher(httpClient *http.Client, parser *Parser, extractor *ContentExtractor, opts FetcherOptions) *Fetcher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.ArticleRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ArticleRate), 1)
	}

	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		extractor:  extractor,
		userAgent:  opts.UserAgent,
		timeout:    cmp.Or(opts.Timeout, DefaultFetchTimeout),
		limiter:    limiter,
	}
}

// FetchAll walks sources in order and returns every article that resolved.
// Failures are logged and never abort the pass.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source, maxArticles int) []RawArticle {
	maxArticles = max(maxArticles, 0)
	articles := make([]RawArticle, 0, len(sources)*maxArticles)

	for _, source := range sources {
		if ctx.Err() != nil {
			slog.Warn("Fetch pass cancelled", "remaining_from", source.Name, "error", ctx.Err())
			break
		}

		fetched := 0
		for _, result := range f.Fetch(ctx, source, maxArticles) {
			if result.Err != nil {
				slog.Warn("Skipping article", "source", source.Name, "error", result.Err)
				metrics.FetchErrors.WithLabelValues(source.Name).Inc()
				continue
			}
			articles = append(articles, *result.Article)
			fetched++
		}

		metrics.ArticlesFetched.WithLabelValues(source.Name).Add(float64(fetched))
		slog.Info("Source processed", "source", source.Name, "articles", fetched)
	}

	return articles
}

// Fetch retrieves the source feed and resolves up to maxArticles entries.
// A source-level failure yields a single error result.
func (f *Fetcher) Fetch(ctx context.Context, source Source, maxArticles int) []Result {
	data, err := f.get(ctx, source.URL)
	if err != nil {
		return []Result{{Err: &FetchError{Source: source.Name, URL: source.URL, Err: fmt.Errorf("failed to fetch feed: %w", err)}}}
	}

	_, items, err := f.parser.Run(data)
	if err != nil {
		return []Result{{Err: &FetchError{Source: source.Name, URL: source.URL, Err: err}}}
	}

	if maxArticles = max(maxArticles, 0); maxArticles < len(items) {
		items = items[:maxArticles]
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		article, err := f.resolve(ctx, source, item)
		if err != nil {
			results = append(results, Result{Err: &FetchError{Source: source.Name, URL: item.Link, Err: err}})
			continue
		}
		results = append(results, Result{Article: article})
	}

	return results
}

func (f *Fetcher) resolve(ctx context.Context, source Source, item Item) (*RawArticle, error) {
	if item.Link == "" {
		return nil, fmt.Errorf("entry %q has no link", item.Title)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	data, err := f.get(ctx, item.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to download article: %w", err)
	}

	extracted, err := f.extractor.Run(data, item.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	published := ""
	if item.PublishedAt != nil {
		published = item.PublishedAt.UTC().Format(time.RFC3339)
	}

	return &RawArticle{
		Title:        cmp.Or(extracted.Title, item.Title),
		BodyText:     extracted.Text,
		SourceName:   source.Name,
		CanonicalURL: item.Link,
		Language:     source.Lang,
		PublishedAt:  published,
	}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
