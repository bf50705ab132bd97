// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Ingredient
// catalog and for IngredientLine rows, including the content-addressed
// find-or-create used by the recipe write path.
//
// Functions:
//
//   - CreateIngredient(ctx, db, name, unit) -> *domain.Ingredient, error
//     Inserts a catalog entry, maintaining the folded search column.
//
//   - SearchIngredients(ctx, db, name) -> []domain.Ingredient, error
//     Lists catalog entries, optionally filtered by a fold-insensitive
//     name prefix, ordered ascending by name.
//
//   - GetIngredient / GetIngredientsByIDs
//     Point and batch catalog lookups.
//
//   - FindOrCreateLine(ctx, db, ingredientID, amount) -> *domain.IngredientLine, error
//     Atomic upsert keyed by (ingredient_id, amount): insert first, and on a
//     unique violation re-read the surviving row. Two recipes submitting the
//     same pair share one line.
package repo

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// foldName normalizes an ingredient name for search: trimmed and
// case-folded so "Мука" and "мука" compare equal on every driver
// (SQLite lower() only folds ASCII).
func foldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// CreateIngredient inserts a catalog entry. The folded search column is
// derived here so callers never have to think about it.
func CreateIngredient(ctx context.Context, db *gorm.DB, name, unit string) (*domain.Ingredient, error) {
	ing := &domain.Ingredient{
		Name:            strings.TrimSpace(name),
		NameFold:        foldName(name),
		MeasurementUnit: strings.TrimSpace(unit),
	}
	if err := db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, err
	}
	return ing, nil
}

// SearchIngredients returns catalog entries ordered ascending by name.
// A non-empty name filters by fold-insensitive prefix match.
func SearchIngredients(ctx context.Context, db *gorm.DB, name string) ([]domain.Ingredient, error) {
	q := db.WithContext(ctx).Model(&domain.Ingredient{}).Order("name asc")
	if f := foldName(name); f != "" {
		q = q.Where("name_fold LIKE ?", likePrefix(f))
	}
	var out []domain.Ingredient
	err := q.Find(&out).Error
	return out, err
}

// likePrefix escapes LIKE metacharacters in s and appends the wildcard.
func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

// GetIngredient fetches a single catalog entry by ID, or ErrNotFound.
func GetIngredient(ctx context.Context, db *gorm.DB, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := db.WithContext(ctx).First(&ing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetIngredientsByIDs resolves a set of catalog ids. Missing ids simply do
// not appear in the result; the caller decides whether that is an error.
func GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Ingredient, error) {
	if len(ids) == 0 {
		return []domain.Ingredient{}, nil
	}
	var out []domain.Ingredient
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// FindOrCreateLine returns the ingredient line for (ingredientID, amount),
// creating it if absent. The insert races are settled by the composite
// unique index: on a duplicate-key failure the surviving row is re-read, so
// concurrent callers converge on the same line.
func FindOrCreateLine(ctx context.Context, db *gorm.DB, ingredientID, amount int64) (*domain.IngredientLine, error) {
	line := &domain.IngredientLine{IngredientID: ingredientID, Amount: amount}
	err := db.WithContext(ctx).Create(line).Error
	if err == nil {
		return line, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	var existing domain.IngredientLine
	if err := db.WithContext(ctx).
		Where("ingredient_id = ? AND amount = ?", ingredientID, amount).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// isUniqueViolation detects unique-constraint failures across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
