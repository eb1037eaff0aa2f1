package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(context.Background(), db)
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func testRecord(videoID string) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		VideoID: videoID,
		Result: &models.AnalysisResult{
			Summary:    "A summary.",
			KeyMoments: []models.Highlight{{Timestamp: "00:10", Description: "start"}},
		},
		Meta: models.AnalysisMeta{
			Provider:     models.ProviderOpenAI,
			Model:        "gpt-4o-mini",
			LanguageCode: "en",
		},
	}
}

func TestPutAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, testRecord("vid1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := repo.Get(ctx, "vid1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Result.Summary != "A summary." {
		t.Errorf("unexpected summary: %q", got.Result.Summary)
	}
	if got.Meta.Provider != models.ProviderOpenAI {
		t.Errorf("unexpected provider: %q", got.Meta.Provider)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestGetMissIsNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "absent")
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, testRecord("vid1")); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	first, err := repo.Get(ctx, "vid1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	updated := testRecord("vid1")
	updated.Result.Summary = "Corrected summary."
	updated.Meta.Validated = true
	if err := repo.Put(ctx, updated); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	second, err := repo.Get(ctx, "vid1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if second.Result.Summary != "Corrected summary." {
		t.Errorf("expected updated summary, got %q", second.Result.Summary)
	}
	if !second.Meta.Validated {
		t.Error("expected validated flag to be updated")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed across upsert: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at did not advance: %v vs %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestDeleteAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"vid1", "vid2", "vid3"} {
		if err := repo.Put(ctx, testRecord(id)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	if err := repo.Delete(ctx, "vid2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "vid2"); !errors.IsNotFound(err) {
		t.Errorf("expected vid2 to be gone, got %v", err)
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	records, _ = repo.List(ctx)
	if len(records) != 0 {
		t.Errorf("expected empty cache after Clear, got %d records", len(records))
	}
}
