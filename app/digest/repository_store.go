package digest

import (
	"context"

	"github.com/lysyi3m/rss-digest/app/database"
)

var _ SummaryStore = (*RepositoryStore)(nil)

// RepositoryStore adapts the summary repository to the Writer's SummaryStore.
type RepositoryStore struct {
	repo database.SummaryRepositoryInterface
}

func NewRepositoryStore(repo database.SummaryRepositoryInterface) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

func (s *RepositoryStore) FindByText(ctx context.Context, summary string) (bool, error) {
	record, err := s.repo.FindByText(ctx, summary)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

func (s *RepositoryStore) Insert(ctx context.Context, summary string) error {
	_, _, err := s.repo.Insert(ctx, summary)
	return err
}
