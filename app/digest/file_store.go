package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lysyi3m/rss-digest/app/fsutil"
)

const (
	filePrefix = "news_digest_"
	fileSuffix = ".json"
)

var _ ArtifactStore = (*FileStore)(nil)

// FileStore keeps digests as news_digest_YYYY-MM-DD.json files in one directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) PathFor(date time.Time) string {
	return filepath.Join(s.dir, FileName(date))
}

func FileName(date time.Time) string {
	return filePrefix + date.Format(DateLayout) + fileSuffix
}

// Write replaces the digest for date with entries.
func (s *FileStore) Write(date time.Time, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode digest: %w", err)
	}

	if err := fsutil.WriteFileAtomic(s.PathFor(date), data); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	return nil
}

func (s *FileStore) Read(date time.Time) ([]Entry, error) {
	data, err := os.ReadFile(s.PathFor(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDigestNotFound, date.Format(DateLayout))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read digest: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode digest: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// Latest returns the most recent date that has a digest.
func (s *FileStore) Latest() (time.Time, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to list digests: %w", err)
	}

	var latest time.Time
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), filePrefix), fileSuffix)
		date, err := time.ParseInLocation(DateLayout, name, time.Local)
		if err != nil {
			continue
		}
		if date.After(latest) {
			latest = date
		}
	}

	if latest.IsZero() {
		return time.Time{}, ErrDigestNotFound
	}

	return latest, nil
}
