// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Recipe
// aggregate and its tag / ingredient-line associations.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions: the recipe write path in the service
// layer runs CreateRecipe/ReplaceTags/ReplaceLines inside one transaction so
// readers never observe a recipe with tags cleared but lines unset.
//
// Functions:
//
//   - CreateRecipe(ctx, db, r) -> error
//     Inserts the scalar recipe row (associations are set separately).
//
//   - GetRecipe(ctx, db, id) -> *domain.Recipe, error
//     Fetches one recipe with author, tags, and ingredient lines (catalog
//     entries preloaded), or ErrNotFound.
//
//   - CountRecipes / ListRecipesPage
//     Pagination over all recipes, newest publication first.
//
//   - UpdateRecipeScalars(ctx, db, r) -> error
//     Writes name/image/text/cooking_time by primary key.
//
//   - ReplaceTags / ReplaceLines
//     Wholesale replacement of the many-to-many association sets.
//
//   - DeleteRecipe(ctx, db, id, authorID) -> error
//     Deletes a recipe owned by authorID, ErrNotFound when no row matches.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// CreateRecipe inserts the scalar recipe row. PubDate is set to UTC now when
// unset. Tag and ingredient-line associations are attached afterwards via
// ReplaceTags/ReplaceLines within the same transaction.
func CreateRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	if r.PubDate.IsZero() {
		r.PubDate = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit("Tags", "IngredientLines", "Author").Create(r).Error
}

// GetRecipe fetches a single recipe by ID with its author, tags, and
// ingredient lines (including the catalog entry of each line). Returns
// ErrNotFound if the record does not exist.
func GetRecipe(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipe, error) {
	var r domain.Recipe
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountRecipes returns the total number of recipes.
func CountRecipes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Recipe{}).Count(&total).Error
	return total, err
}

// ListRecipesPage returns a paginated slice of recipes ordered by
// publication date descending (newest first), with the same preloads as
// GetRecipe. The caller computes offset and limit.
func ListRecipesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Order("pub_date desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecipesByAuthor returns an author's recipes newest first, optionally
// limited. Used by the subscriptions listing (short recipe form).
func ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID int64, limit int) ([]domain.Recipe, error) {
	q := db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Recipe
	err := q.Find(&out).Error
	return out, err
}

// CountRecipesByAuthor returns the number of recipes owned by authorID.
func CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&total).Error
	return total, err
}

// UpdateRecipeScalars writes the scalar columns of r by primary key.
// Associations are untouched; use ReplaceTags/ReplaceLines for those.
func UpdateRecipeScalars(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	return db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", r.ID).
		Updates(map[string]any{
			"name":         r.Name,
			"image":        r.Image,
			"text":         r.Text,
			"cooking_time": r.CookingTime,
		}).Error
}

// ReplaceTags makes the recipe's tag set exactly tags: clear, then set.
// Run inside a transaction together with ReplaceLines so a concurrent
// reader never sees a half-replaced recipe.
func ReplaceTags(ctx context.Context, db *gorm.DB, r *domain.Recipe, tags []domain.Tag) error {
	return db.WithContext(ctx).Model(r).Association("Tags").Replace(toAnySlice(tags)...)
}

// ReplaceLines makes the recipe's ingredient-line set exactly lines.
// Lines dropped from a recipe are detached, not deleted: they are
// content-addressed and may be shared with other recipes.
func ReplaceLines(ctx context.Context, db *gorm.DB, r *domain.Recipe, lines []domain.IngredientLine) error {
	return db.WithContext(ctx).Model(r).Association("IngredientLines").Replace(toAnySlice(lines)...)
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

// DeleteRecipe removes a recipe owned by authorID. If no rows are affected
// (recipe missing or not owned by authorID), it returns ErrNotFound.
// Association rows and dependent favorites/cart entries go with it via the
// cascading foreign keys.
func DeleteRecipe(ctx context.Context, db *gorm.DB, id, authorID int64) error {
	res := db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&domain.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
