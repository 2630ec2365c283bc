package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const summariesTable = "article_summaries"

type SummaryRepository struct {
	db *DB
	qb sq.StatementBuilderType
}

func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// FindByText returns the record holding exactly summary, or nil when none exists.
func (r *SummaryRepository) FindByText(ctx context.Context, summary string) (*SummaryRecord, error) {
	query, args, err := r.qb.
		Select("id", "summary", "created_at").
		From(summariesTable).
		Where(sq.Eq{"summary": summary}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find summary: %w", err)
	}

	return record, nil
}

// Insert stores summary unless an identical text exists. The returned flag
// reports whether a new row was created; the record is always the stored one.
func (r *SummaryRepository) Insert(ctx context.Context, summary string) (*SummaryRecord, bool, error) {
	query, args, err := r.qb.
		Insert(summariesTable).
		Columns("summary", "created_at").
		Values(summary, time.Now().UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(summary) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	record, err := r.FindByText(ctx, summary)
	if err != nil {
		return nil, false, err
	}
	if record == nil {
		return nil, false, fmt.Errorf("summary missing after insert")
	}

	return record, affected > 0, nil
}

// List returns stored summaries in insertion order. A non-positive limit returns all rows.
func (r *SummaryRepository) List(ctx context.Context, limit int) ([]SummaryRecord, error) {
	builder := r.qb.
		Select("id", "summary", "created_at").
		From(summariesTable).
		OrderBy("id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	records := make([]SummaryRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}

	return records, nil
}

func (r *SummaryRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.qb.Select("COUNT(*)").From(summariesTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*SummaryRecord, error) {
	var (
		record    SummaryRecord
		createdAt string
	)

	if err := row.Scan(&record.ID, &record.Summary, &createdAt); err != nil {
		return nil, err
	}

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}

	return &record, nil
}
