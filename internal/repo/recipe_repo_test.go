package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// newRepoDB opens a throwaway SQLite database and migrates the full schema.
// Shared by the repo tests in this package.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  username,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedTag(t *testing.T, db *gorm.DB, name, color, slug string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("seed tag %s: %v", name, err)
	}
	return tag
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *domain.Ingredient {
	t.Helper()
	ing, err := CreateIngredient(context.Background(), db, name, unit)
	if err != nil {
		t.Fatalf("seed ingredient %s: %v", name, err)
	}
	return ing
}

func seedRecipe(t *testing.T, db *gorm.DB, authorID int64, name string, pub time.Time) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "recipes/x.png",
		Text:        "steps",
		CookingTime: 10,
		PubDate:     pub,
	}
	if err := CreateRecipe(context.Background(), db, r); err != nil {
		t.Fatalf("seed recipe %s: %v", name, err)
	}
	return r
}

func TestCreateRecipe_SetsPubDateAndPersists(t *testing.T) {
	db := newRepoDB(t)
	author := seedUser(t, db, "alice")

	start := time.Now().UTC().Add(-time.Minute)
	r := &domain.Recipe{
		AuthorID:    author.ID,
		Name:        "Pancakes",
		Image:       "recipes/p.png",
		Text:        "Mix and fry.",
		CookingTime: 25,
	}
	if err := CreateRecipe(context.Background(), db, r); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if r.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if r.PubDate.Before(start) {
		t.Fatalf("PubDate seems unset/really old: %v", r.PubDate)
	}

	// round-trip
	var got domain.Recipe
	if err := db.First(&got, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("load created recipe: %v", err)
	}
	if got.Name != "Pancakes" || got.AuthorID != author.ID || got.CookingTime != 25 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestGetRecipe_PreloadsAssociations(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "bob")
	tag := seedTag(t, db, "breakfast", "#ff0000", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")

	r := seedRecipe(t, db, author.ID, "Bread", time.Now().UTC())
	if err := ReplaceTags(ctx, db, r, []domain.Tag{*tag}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}
	line, err := FindOrCreateLine(ctx, db, flour.ID, 500)
	if err != nil {
		t.Fatalf("FindOrCreateLine: %v", err)
	}
	if err := ReplaceLines(ctx, db, r, []domain.IngredientLine{*line}); err != nil {
		t.Fatalf("ReplaceLines: %v", err)
	}

	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Author.Username != "bob" {
		t.Fatalf("author not preloaded: %+v", got.Author)
	}
	if len(got.Tags) != 1 || got.Tags[0].Slug != "breakfast" {
		t.Fatalf("tags not preloaded: %+v", got.Tags)
	}
	if len(got.IngredientLines) != 1 || got.IngredientLines[0].Ingredient.Name != "flour" {
		t.Fatalf("lines/catalog not preloaded: %+v", got.IngredientLines)
	}
	if got.IngredientLines[0].Amount != 500 {
		t.Fatalf("line amount mismatch: %+v", got.IngredientLines[0])
	}

	// Missing recipe -> ErrRecordNotFound
	if _, err := GetRecipe(ctx, db, 999); err == nil {
		t.Fatalf("expected ErrRecordNotFound for missing recipe")
	}
}

func TestListRecipesPage_NewestFirst(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "carol")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 1; i <= 5; i++ {
		r := seedRecipe(t, db, author.ID, fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, r.ID)
	}

	total, err := CountRecipes(ctx, db)
	if err != nil || total != 5 {
		t.Fatalf("CountRecipes = %d, %v", total, err)
	}

	// Offset 1, limit 2 => 2nd and 3rd newest
	page, err := ListRecipesPage(ctx, db, 1, 2)
	if err != nil {
		t.Fatalf("ListRecipesPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[3] || page[1].ID != ids[2] {
		t.Fatalf("unexpected page order: %+v", page)
	}
}

func TestListRecipesByAuthor_LimitAndCount(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	a1 := seedUser(t, db, "dora")
	a2 := seedUser(t, db, "emil")

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		seedRecipe(t, db, a1.ID, fmt.Sprintf("a1-%d", i), base.Add(time.Duration(i)*time.Minute))
	}
	seedRecipe(t, db, a2.ID, "a2-1", base)

	n, err := CountRecipesByAuthor(ctx, db, a1.ID)
	if err != nil || n != 3 {
		t.Fatalf("CountRecipesByAuthor = %d, %v", n, err)
	}

	limited, err := ListRecipesByAuthor(ctx, db, a1.ID, 2)
	if err != nil {
		t.Fatalf("ListRecipesByAuthor: %v", err)
	}
	if len(limited) != 2 || limited[0].Name != "a1-3" {
		t.Fatalf("expected 2 newest recipes, got %+v", limited)
	}

	all, err := ListRecipesByAuthor(ctx, db, a1.ID, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all 3 recipes with limit 0, got %d %v", len(all), err)
	}
}

func TestUpdateRecipeScalars_WritesOnlyScalars(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "fred")
	r := seedRecipe(t, db, author.ID, "Old", time.Now().UTC())

	upd := &domain.Recipe{
		ID:          r.ID,
		Name:        "New",
		Image:       "recipes/new.png",
		Text:        "rewritten",
		CookingTime: 42,
	}
	if err := UpdateRecipeScalars(ctx, db, upd); err != nil {
		t.Fatalf("UpdateRecipeScalars: %v", err)
	}

	var got domain.Recipe
	if err := db.First(&got, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("load updated: %v", err)
	}
	if got.Name != "New" || got.Image != "recipes/new.png" || got.Text != "rewritten" || got.CookingTime != 42 {
		t.Fatalf("scalars not written: %+v", got)
	}
	if !got.PubDate.Equal(r.PubDate) {
		t.Fatalf("PubDate must survive scalar update: %v vs %v", got.PubDate, r.PubDate)
	}
}

func TestReplaceTags_WholesaleReplacement(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "gina")
	t1 := seedTag(t, db, "breakfast", "#ff0000", "breakfast")
	t2 := seedTag(t, db, "dinner", "#00ff00", "dinner")
	t3 := seedTag(t, db, "vegan", "#0000ff", "vegan")

	r := seedRecipe(t, db, author.ID, "Soup", time.Now().UTC())
	if err := ReplaceTags(ctx, db, r, []domain.Tag{*t1, *t2}); err != nil {
		t.Fatalf("first ReplaceTags: %v", err)
	}
	if err := ReplaceTags(ctx, db, r, []domain.Tag{*t3}); err != nil {
		t.Fatalf("second ReplaceTags: %v", err)
	}

	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Slug != "vegan" {
		t.Fatalf("expected only the replacement tag, got %+v", got.Tags)
	}
}

func TestReplaceLines_DetachedLineSurvivesForOtherRecipes(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "hugo")
	flour := seedIngredient(t, db, "flour", "g")

	line, err := FindOrCreateLine(ctx, db, flour.ID, 200)
	if err != nil {
		t.Fatalf("FindOrCreateLine: %v", err)
	}

	r1 := seedRecipe(t, db, author.ID, "One", time.Now().UTC())
	r2 := seedRecipe(t, db, author.ID, "Two", time.Now().UTC())
	for _, r := range []*domain.Recipe{r1, r2} {
		if err := ReplaceLines(ctx, db, r, []domain.IngredientLine{*line}); err != nil {
			t.Fatalf("attach line: %v", err)
		}
	}

	// Detach from r1; the shared row must still back r2.
	if err := ReplaceLines(ctx, db, r1, nil); err != nil {
		t.Fatalf("detach: %v", err)
	}
	var count int64
	if err := db.Model(&domain.IngredientLine{}).Count(&count).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if count != 1 {
		t.Fatalf("line row must survive detachment, got %d rows", count)
	}
	got, err := GetRecipe(ctx, db, r2.ID)
	if err != nil {
		t.Fatalf("GetRecipe r2: %v", err)
	}
	if len(got.IngredientLines) != 1 || got.IngredientLines[0].Amount != 200 {
		t.Fatalf("r2 lost its line: %+v", got.IngredientLines)
	}
}

func TestDeleteRecipe_OwnershipAndNotFound(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "ivan")
	other := seedUser(t, db, "judy")
	r := seedRecipe(t, db, owner.ID, "Mine", time.Now().UTC())

	// Wrong author -> not found, row untouched
	if err := DeleteRecipe(ctx, db, r.ID, other.ID); err == nil {
		t.Fatalf("expected ErrRecordNotFound for foreign author")
	}
	// Owner -> deleted
	if err := DeleteRecipe(ctx, db, r.ID, owner.ID); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if _, err := GetRecipe(ctx, db, r.ID); err == nil {
		t.Fatalf("recipe must be gone")
	}
	// Second delete -> not found
	if err := DeleteRecipe(ctx, db, r.ID, owner.ID); err == nil {
		t.Fatalf("expected ErrRecordNotFound on second delete")
	}
}
