package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/lysyi3m/rss-digest/app/feed"
	"github.com/lysyi3m/rss-digest/app/metrics"
)

const TranslationChunkSize = 400

// Translator normalizes article text into a single target language. Backends
// are created lazily per language pair and reused for the Translator's lifetime.
type Translator struct {
	target   string
	factory  BackendFactory
	backends map[string]TranslationBackend
	mu       sync.RWMutex
	group    singleflight.Group
}

func NewTranslator(target string, factory BackendFactory) *Translator {
	return &Translator{
		target:   target,
		factory:  factory,
		backends: make(map[string]TranslationBackend),
	}
}

func (t *Translator) Target() string {
	return t.target
}

// Translate returns the article body in the target language. Any backend
// failure degrades to the untranslated body.
func (t *Translator) Translate(ctx context.Context, article feed.RawArticle) string {
	translated, err := t.TryTranslate(ctx, article)
	if err != nil {
		slog.Warn("Translation failed, keeping original text",
			"url", article.CanonicalURL,
			"source_lang", article.Language,
			"target_lang", t.target,
			"error", err)
		metrics.ModelFallbacks.WithLabelValues("translation").Inc()
		return article.BodyText
	}
	return translated
}

// TryTranslate is Translate without the fallback. Errors wrap ErrTranslation.
func (t *Translator) TryTranslate(ctx context.Context, article feed.RawArticle) (string, error) {
	if SameLanguage(article.Language, t.target) {
		return article.BodyText, nil
	}

	chunks := chunkRunes(article.BodyText, TranslationChunkSize)
	if len(chunks) == 0 {
		return "", nil
	}

	backend, err := t.backend(ctx, article.Language)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	translated := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := backend.Translate(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTranslation, err)
		}
		translated = append(translated, out)
	}

	return strings.Join(translated, " "), nil
}

// CachedPairs reports how many language pairs have a live backend.
func (t *Translator) CachedPairs() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.backends)
}

func (t *Translator) backend(ctx context.Context, source string) (TranslationBackend, error) {
	key := pairKey(source, t.target)

	t.mu.RLock()
	backend, ok := t.backends[key]
	t.mu.RUnlock()
	if ok {
		return backend, nil
	}

	v, err, _ := t.group.Do(key, func() (any, error) {
		t.mu.RLock()
		existing, ok := t.backends[key]
		t.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created, err := t.factory(ctx, source, t.target)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend for %s: %w", key, err)
		}

		t.mu.Lock()
		t.backends[key] = created
		t.mu.Unlock()

		slog.Debug("Translation backend created", "pair", key)

		return created, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(TranslationBackend), nil
}

// SameLanguage compares two language codes on their base language, so "en",
// "EN" and "en-US" are equal. Unparseable codes fall back to a
// case-insensitive string comparison.
func SameLanguage(a, b string) bool {
	tagA, errA := language.Parse(a)
	tagB, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}

	baseA, _ := tagA.Base()
	baseB, _ := tagB.Base()
	return baseA == baseB
}

func pairKey(source, target string) string {
	return normalizeCode(source) + "_" + normalizeCode(target)
}

func normalizeCode(code string) string {
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	return strings.ToLower(strings.TrimSpace(code))
}
