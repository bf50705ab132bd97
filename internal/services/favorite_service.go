// Package services – FavoriteService and CartService
//
// This file implements the two recipe-collection services: favorites and
// the shopping cart. Both govern a (user, recipe) relation with identical
// semantics: adding twice is an error, removing a missing entry is an
// error, and the recipe must exist. On a successful add they return the
// short recipe form used by collection responses.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// RelationRepo defines the repository contract shared by FavoriteService
// and CartService.
type RelationRepo interface {
	GetRecipe(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipe, error)

	AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID int64) error
	RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID int64) error

	AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID int64) error
	RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID int64) error
}

// RecipeShort is the compact recipe projection returned by collection adds
// and embedded in subscription listings.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func toShort(r *domain.Recipe) *RecipeShort {
	return &RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// FavoriteService manages the favorites relation.
type FavoriteService struct {
	DB   *gorm.DB
	Repo RelationRepo
}

// Add favorites recipeID for userID. The recipe must exist
// (ErrRecipeNotFound) and must not already be favorited
// (ErrAlreadyFavorited). Returns the short recipe form.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID int64) (*RecipeShort, error) {
	rec, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if err := s.Repo.AddFavorite(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}
	return toShort(rec), nil
}

// Remove deletes the favorite, ErrNotFavorited when it does not exist.
func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID int64) error {
	if err := s.Repo.RemoveFavorite(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFavorited
		}
		return err
	}
	return nil
}

// CartService manages the shopping-cart relation read by the aggregator.
type CartService struct {
	DB   *gorm.DB
	Repo RelationRepo
}

// Add puts recipeID into userID's cart. The recipe must exist
// (ErrRecipeNotFound) and must not already be in the cart
// (ErrAlreadyInCart). Returns the short recipe form.
func (s *CartService) Add(ctx context.Context, userID, recipeID int64) (*RecipeShort, error) {
	rec, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if err := s.Repo.AddCartItem(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyInCart
		}
		return nil, err
	}
	return toShort(rec), nil
}

// Remove deletes the cart entry, ErrNotInCart when it does not exist.
func (s *CartService) Remove(ctx context.Context, userID, recipeID int64) error {
	if err := s.Repo.RemoveCartItem(ctx, s.DB, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotInCart
		}
		return err
	}
	return nil
}
