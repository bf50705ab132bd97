// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Tag model.
//
// Tags are reference data managed outside the recipe write path: this core
// only reads them, either for the catalog endpoints or to resolve the tag
// ids submitted with a recipe payload.
//
// Error semantics:
//   - When a tag is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListTags returns all tags ordered ascending by name.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// GetTag fetches a single tag by ID, or ErrNotFound if missing.
func GetTag(ctx context.Context, db *gorm.DB, id int64) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagsByIDs resolves a set of tag ids to their rows. The result preserves
// no particular order and may be shorter than ids when some do not exist;
// the caller decides whether that is an error.
func GetTagsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}
	var out []domain.Tag
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}
