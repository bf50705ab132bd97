// Package services – SubscriptionService
//
// This file implements author subscriptions: following and unfollowing
// another user, and listing the followed authors together with their
// recipes (short form) and recipe counts. Self-follow and duplicate
// subscriptions are rejected with sentinel errors.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// SubscriptionRepo defines the repository contract required by
// SubscriptionService.
type SubscriptionRepo interface {
	GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error)
	Subscribe(ctx context.Context, db *gorm.DB, userID, authorID int64) error
	Unsubscribe(ctx context.Context, db *gorm.DB, userID, authorID int64) error
	ListSubscribedAuthors(ctx context.Context, db *gorm.DB, userID int64) ([]domain.User, error)
	ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID int64, limit int) ([]domain.Recipe, error)
	CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID int64) (int64, error)
}

// AuthorResponse is one followed author in a subscriptions listing: the
// user projection plus their recipes (short form, optionally limited) and
// total recipe count. IsSubscribed is always true in this context.
type AuthorResponse struct {
	Email        string        `json:"email"`
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	IsSubscribed bool          `json:"is_subscribed"`
	RecipesCount int64         `json:"recipes_count"`
	Recipes      []RecipeShort `json:"recipes"`
}

// SubscriptionService manages the follow relation between users.
type SubscriptionService struct {
	DB   *gorm.DB
	Repo SubscriptionRepo
}

// Subscribe makes userID follow authorID. The author must exist
// (ErrUserNotFound), must not be the user themselves (ErrSelfSubscribe),
// and must not already be followed (ErrAlreadySubscribed). Returns the
// author entry with recipes limited to recipesLimit (0 = all).
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*AuthorResponse, error) {
	if userID == authorID {
		return nil, ErrSelfSubscribe
	}
	author, err := s.Repo.GetUser(ctx, s.DB, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.Repo.Subscribe(ctx, s.DB, userID, authorID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return s.renderAuthor(ctx, author, recipesLimit)
}

// Unsubscribe removes the follow relation. The author must exist
// (ErrUserNotFound); a missing subscription yields ErrNotSubscribed.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.Repo.GetUser(ctx, s.DB, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.Repo.Unsubscribe(ctx, s.DB, userID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

// List returns every author userID follows, each with recipe count and
// recipes limited to recipesLimit (0 = all).
func (s *SubscriptionService) List(ctx context.Context, userID int64, recipesLimit int) ([]AuthorResponse, error) {
	authors, err := s.Repo.ListSubscribedAuthors(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorResponse, 0, len(authors))
	for i := range authors {
		entry, err := s.renderAuthor(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, nil
}

func (s *SubscriptionService) renderAuthor(ctx context.Context, author *domain.User, recipesLimit int) (*AuthorResponse, error) {
	count, err := s.Repo.CountRecipesByAuthor(ctx, s.DB, author.ID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.Repo.ListRecipesByAuthor(ctx, s.DB, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	shorts := make([]RecipeShort, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, *toShort(&recipes[i]))
	}
	return &AuthorResponse{
		Email:        author.Email,
		ID:           author.ID,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
		RecipesCount: count,
		Recipes:      shorts,
	}, nil
}
