package repo

import (
	"context"
	"testing"
	"time"
)

func TestRecipesStats_EmptyTable(t *testing.T) {
	db := newRepoDB(t)
	count, maxUpdated, err := RecipesStats(context.Background(), db)
	if err != nil {
		t.Fatalf("RecipesStats: %v", err)
	}
	if count != 0 || maxUpdated != nil {
		t.Fatalf("empty table: got count=%d max=%v", count, maxUpdated)
	}
}

func TestRecipesStats_CountAndMaxUpdatedAt(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	seedRecipe(t, db, author.ID, "one", time.Now().UTC())
	second := seedRecipe(t, db, author.ID, "two", time.Now().UTC())

	count, maxUpdated, err := RecipesStats(ctx, db)
	if err != nil {
		t.Fatalf("RecipesStats: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if maxUpdated == nil {
		t.Fatalf("expected max updated_at for non-empty table")
	}

	// Touching a row must advance the max.
	before := *maxUpdated
	time.Sleep(10 * time.Millisecond)
	upd := *second
	upd.Name = "two renamed"
	if err := UpdateRecipeScalars(ctx, db, &upd); err != nil {
		t.Fatalf("UpdateRecipeScalars: %v", err)
	}
	_, after, err := RecipesStats(ctx, db)
	if err != nil || after == nil {
		t.Fatalf("RecipesStats after update: %v", err)
	}
	if !after.After(before) {
		t.Fatalf("max updated_at did not advance: %v -> %v", before, *after)
	}
}
