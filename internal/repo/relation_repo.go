// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the per-user
// relations: favorites, shopping-cart entries, and author subscriptions.
//
// All three relations share the same shape: a composite unique index over
// the pair, an insert that maps unique violations to ErrDuplicate, and a
// delete that maps zero affected rows to ErrNotFound. Existence probes back
// the viewer flags on the recipe read model.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// ErrDuplicate indicates that a relation row already exists for the given
// pair (favorite, cart entry, or subscription).
var ErrDuplicate = errors.New("duplicate")

// AddFavorite inserts a (user, recipe) favorite, ErrDuplicate if present.
func AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	fav := &domain.Favorite{UserID: userID, RecipeID: recipeID}
	if err := db.WithContext(ctx).Create(fav).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// RemoveFavorite deletes a (user, recipe) favorite, ErrNotFound if absent.
func RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsFavorited reports whether userID has favorited recipeID.
func IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// AddCartItem inserts a (user, recipe) cart entry, ErrDuplicate if present.
func AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	item := &domain.CartItem{UserID: userID, RecipeID: recipeID}
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// RemoveCartItem deletes a (user, recipe) cart entry, ErrNotFound if absent.
func RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InCart reports whether recipeID is in userID's shopping cart.
func InCart(ctx context.Context, db *gorm.DB, userID, recipeID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// CountCartItems returns the number of cart entries for userID. The
// aggregator uses this to distinguish an empty cart before running the
// grouped sum.
func CountCartItems(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

// ShoppingListRow is one aggregated line of the shopping-list report:
// grouped by the catalog entry's human identity (name + unit), amounts
// summed across every line of every recipe in the cart.
type ShoppingListRow struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

// SumCartIngredients resolves every ingredient line reachable from userID's
// cart (cart -> recipe -> lines), groups by (name, measurement unit), and
// sums the amounts. Rows come back ordered ascending by name then unit so
// the rendered report is deterministic on both drivers.
//
// Grouping is deliberately by the catalog entry's name+unit rather than its
// id: two catalog rows sharing both merge into one report line.
func SumCartIngredients(ctx context.Context, db *gorm.DB, userID int64) ([]ShoppingListRow, error) {
	var rows []ShoppingListRow
	err := db.WithContext(ctx).
		Table("ingredient_lines AS il").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(il.amount) AS total").
		Joins("JOIN ingredients i ON i.id = il.ingredient_id").
		Joins("JOIN recipe_ingredient_lines ril ON ril.ingredient_line_id = il.id").
		Joins("JOIN cart_items ci ON ci.recipe_id = ril.recipe_id").
		Where("ci.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name asc, i.measurement_unit asc").
		Scan(&rows).Error
	return rows, err
}

// Subscribe inserts a (user, author) subscription, ErrDuplicate if present.
// Self-follow is rejected in the service layer, not here.
func Subscribe(ctx context.Context, db *gorm.DB, userID, authorID int64) error {
	sub := &domain.Subscription{UserID: userID, AuthorID: authorID}
	if err := db.WithContext(ctx).Create(sub).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Unsubscribe deletes a (user, author) subscription, ErrNotFound if absent.
func Unsubscribe(ctx context.Context, db *gorm.DB, userID, authorID int64) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsSubscribed reports whether userID follows authorID.
func IsSubscribed(ctx context.Context, db *gorm.DB, userID, authorID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}

// ListSubscribedAuthors returns the authors userID follows, ordered by id.
func ListSubscribedAuthors(ctx context.Context, db *gorm.DB, userID int64) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Table("users").
		Joins("JOIN subscriptions s ON s.author_id = users.id").
		Where("s.user_id = ?", userID).
		Order("users.id asc").
		Find(&out).Error
	return out, err
}

// GetUser fetches a user by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
