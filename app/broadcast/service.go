package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lysyi3m/rss-digest/app/database"
)

type SummaryLister interface {
	List(ctx context.Context, limit int) ([]database.SummaryRecord, error)
}

type Composer interface {
	Compose(ctx context.Context, summaries string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Service builds broadcasts from every stored summary and remembers the most
// recent script so audio can be requested without resending it.
type Service struct {
	summaries SummaryLister
	composer  Composer
	speaker   Synthesizer

	mu   sync.Mutex
	last string
}

func NewService(summaries SummaryLister, composer Composer, speaker Synthesizer) *Service {
	return &Service{
		summaries: summaries,
		composer:  composer,
		speaker:   speaker,
	}
}

func (s *Service) Summaries(ctx context.Context) ([]string, error) {
	records, err := s.summaries.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Summary)
	}
	return out, nil
}

func (s *Service) Generate(ctx context.Context) (string, error) {
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return "", err
	}

	script, err := s.composer.Compose(ctx, strings.Join(summaries, "\n\n"))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.last = script
	s.mu.Unlock()

	slog.Info("Broadcast generated", "summaries", len(summaries), "chars", len(script))
	return script, nil
}

// Speak synthesizes text, or the last generated broadcast when text is blank.
func (s *Service) Speak(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		text = s.Last()
	}
	return s.speaker.Synthesize(ctx, text)
}

func (s *Service) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
