// Package services – CatalogService
//
// This file exposes the reference catalogs (tags and ingredients) to the
// HTTP layer. The catalogs are read-only here: entries are loaded out of
// band (fixtures, admin tooling), and this service only lists and resolves
// them. Ingredient listing supports a fold-insensitive name prefix filter.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// CatalogRepo defines the repository contract required by CatalogService.
type CatalogRepo interface {
	ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error)
	GetTag(ctx context.Context, db *gorm.DB, id int64) (*domain.Tag, error)
	SearchIngredients(ctx context.Context, db *gorm.DB, name string) ([]domain.Ingredient, error)
	GetIngredient(ctx context.Context, db *gorm.DB, id int64) (*domain.Ingredient, error)
}

// CatalogService serves the tag and ingredient reference data.
type CatalogService struct {
	DB   *gorm.DB
	Repo CatalogRepo
}

// ListTags returns every tag, ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.Repo.ListTags(ctx, s.DB)
}

// GetTag returns one tag or ErrTagNotFound.
func (s *CatalogService) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	t, err := s.Repo.GetTag(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListIngredients returns catalog entries ordered by name, optionally
// filtered by a fold-insensitive name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]domain.Ingredient, error) {
	return s.Repo.SearchIngredients(ctx, s.DB, name)
}

// GetIngredient returns one catalog entry or ErrIngredientNotFound.
func (s *CatalogService) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing, err := s.Repo.GetIngredient(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ing, nil
}
