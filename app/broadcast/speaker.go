package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const AudioURLPrefix = "/static/audio/"

var ErrEmptyAudio = errors.New("speech backend produced no audio")

// SpeechCreator is the subset of the OpenAI client used for text to speech.
type SpeechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

var _ SpeechCreator = (*openai.Client)(nil)

type Speaker struct {
	client SpeechCreator
	model  string
	voice  string
	dir    string
	now    func() time.Time
}

func NewSpeaker(client SpeechCreator, model, voice, dir string) *Speaker {
	return &Speaker{
		client: client,
		model:  model,
		voice:  voice,
		dir:    dir,
		now:    time.Now,
	}
}

func FileName(at time.Time) string {
	return "broadcast_" + at.Format("20060102150405") + ".mp3"
}

// Synthesize renders text to an mp3 in the audio directory and returns the
// URL it is served under.
func (s *Speaker) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingToBroadcast
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to synthesize speech: %w", err)
	}
	defer resp.Close()

	name := FileName(s.now())
	path := filepath.Join(s.dir, name)

	written, err := writeAudio(path, resp)
	if err != nil {
		return "", err
	}
	if written == 0 {
		return "", ErrEmptyAudio
	}

	slog.Info("Audio generated", "path", path, "bytes", written)
	return AudioURLPrefix + name, nil
}

func writeAudio(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".audio-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create audio file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write audio: %w", err)
	}
	if written == 0 {
		return 0, nil
	}

	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("failed to save audio: %w", err)
	}

	return written, nil
}
