package database

import "context"

type SummaryRepositoryInterface interface {
	FindByText(ctx context.Context, summary string) (*SummaryRecord, error)
	Insert(ctx context.Context, summary string) (*SummaryRecord, bool, error)
	List(ctx context.Context, limit int) ([]SummaryRecord, error)
	Count(ctx context.Context) (int, error)
}

var _ SummaryRepositoryInterface = (*SummaryRepository)(nil)
