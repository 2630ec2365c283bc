package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error on second run, got: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
}

func TestSummaryRepositoryInsertAndFind(t *testing.T) {
	repo := NewSummaryRepository(newTestDB(t))
	ctx := context.Background()

	found, err := repo.FindByText(ctx, "Markets rallied.")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found != nil {
		t.Errorf("Expected no record, got %+v", found)
	}

	record, inserted, err := repo.Insert(ctx, "Markets rallied.")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !inserted {
		t.Error("Expected first insert to create a row")
	}
	if record.Summary != "Markets rallied." {
		t.Errorf("Expected summary 'Markets rallied.', got '%s'", record.Summary)
	}
	if record.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	found, err = repo.FindByText(ctx, "Markets rallied.")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found == nil || found.ID != record.ID {
		t.Errorf("Expected to find record %d, got %+v", record.ID, found)
	}
}

func TestSummaryRepositoryInsertDuplicate(t *testing.T) {
	repo := NewSummaryRepository(newTestDB(t))
	ctx := context.Background()

	first, _, err := repo.Insert(ctx, "Same text.")
	if err != nil {
		t.Fatal(err)
	}

	second, inserted, err := repo.Insert(ctx, "Same text.")
	if err != nil {
		t.Fatalf("Expected no error on duplicate insert, got: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to be skipped")
	}
	if second.ID != first.ID {
		t.Errorf("Expected existing record %d, got %d", first.ID, second.ID)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}
}

func TestSummaryRepositoryConcurrentDuplicates(t *testing.T) {
	repo := NewSummaryRepository(newTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := repo.Insert(ctx, "Racing summary."); err != nil {
				t.Errorf("Unexpected insert error: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after concurrent inserts, got %d", count)
	}
}

func TestSummaryRepositoryList(t *testing.T) {
	repo := NewSummaryRepository(newTestDB(t))
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, _, err := repo.Insert(ctx, text); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}
	if all[0].Summary != "first" || all[2].Summary != "third" {
		t.Errorf("Expected insertion order, got %v", all)
	}

	limited, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 records, got %d", len(limited))
	}
}
