// Package services – ShoppingListService
//
// This file implements the shopping-list aggregator: it resolves every
// ingredient line reachable from the requesting user's cart, groups the
// multiset by the catalog entry's human identity (name + measurement unit),
// sums the amounts per group, and renders a flat plain-text report suitable
// for a file download. An empty cart is a predictable failure (ErrEmptyCart)
// so the handler can answer 400 without producing an attachment.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// ShoppingListRepo defines the repository contract required by
// ShoppingListService.
type ShoppingListRepo interface {
	// GetUser resolves the report owner (header and filename).
	GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error)

	// CountCartItems reports how many cart entries the user has.
	CountCartItems(ctx context.Context, db *gorm.DB, userID int64) (int64, error)

	// SumCartIngredients returns the grouped, summed report rows ordered
	// ascending by name then unit.
	SumCartIngredients(ctx context.Context, db *gorm.DB, userID int64) ([]repo.ShoppingListRow, error)
}

// ShoppingList is the rendered report: a text body plus the download
// filename derived from the owner's username.
type ShoppingList struct {
	Filename string
	Content  string
}

// ShoppingListService produces the merged shopping list across all cart
// recipes of one user.
type ShoppingListService struct {
	// DB is the GORM handle used for all aggregation queries.
	DB *gorm.DB
	// Repo is the repository backing the aggregation.
	Repo ShoppingListRepo

	// Now returns the report date; defaults to time.Now when nil.
	// Tests pin it for deterministic output.
	Now func() time.Time
}

// NewShoppingListService constructs a ShoppingListService.
func NewShoppingListService(db *gorm.DB, r ShoppingListRepo) *ShoppingListService {
	return &ShoppingListService{DB: db, Repo: r}
}

// Render builds the shopping list for userID.
//
// Semantics:
//   - ErrUserNotFound when the user does not exist.
//   - ErrEmptyCart when the user has no cart entries; no report is produced.
//   - Otherwise one line per distinct (name, unit) group, amounts summed
//     with multiplicity across every recipe in the cart, ordered ascending
//     by name. The header names the user and the current date.
func (s *ShoppingListService) Render(ctx context.Context, userID int64) (*ShoppingList, error) {
	user, err := s.Repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	count, err := s.Repo.CountCartItems(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrEmptyCart
	}

	rows, err := s.Repo.SumCartIngredients(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n\n", user.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", now().Format("2006-01-02"))
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s) - %d", row.Name, row.MeasurementUnit, row.Total)
	}

	return &ShoppingList{
		Filename: user.Username + "_shopping_list.txt",
		Content:  b.String(),
	}, nil
}
