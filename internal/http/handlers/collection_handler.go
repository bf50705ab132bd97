// Collection HTTP handlers: favorites and the shopping cart.
//
// This file exposes the per-user recipe collections:
//   - POST   /recipes/{id}/favorite        (favorite a recipe)
//   - DELETE /recipes/{id}/favorite        (unfavorite)
//   - POST   /recipes/{id}/shopping_cart   (add to cart)
//   - DELETE /recipes/{id}/shopping_cart   (remove from cart)
//   - GET    /recipes/download_shopping_cart (merged list as a text file)
//
// Both collections share add/remove semantics: duplicates and missing
// entries are client errors, and a successful add answers with the short
// recipe form.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-backend/internal/services"
	"github.com/tbourn/go-recipe-backend/internal/utils"
)

// FavoriteService defines the favorites relation operations consumed by
// HTTP handlers.
type FavoriteService interface {
	// Add favorites a recipe and returns its short form.
	Add(ctx context.Context, userID, recipeID int64) (*services.RecipeShort, error)
	// Remove deletes the favorite.
	Remove(ctx context.Context, userID, recipeID int64) error
}

// CartService defines the shopping-cart relation operations consumed by
// HTTP handlers.
type CartService interface {
	// Add puts a recipe into the cart and returns its short form.
	Add(ctx context.Context, userID, recipeID int64) (*services.RecipeShort, error)
	// Remove deletes the cart entry.
	Remove(ctx context.Context, userID, recipeID int64) error
}

// ShoppingListService renders the merged shopping list for a user's cart.
type ShoppingListService interface {
	// Render aggregates the cart into a plain-text report.
	Render(ctx context.Context, userID int64) (*services.ShoppingList, error)
}

// relationAdd is the shared shape of the favorite/cart add endpoints.
func relationAdd(c *gin.Context, add func(ctx context.Context, userID, recipeID int64) (*services.RecipeShort, error)) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a positive integer")
		return
	}
	short, err := add(c.Request.Context(), uid, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusCreated, short)
}

// relationRemove is the shared shape of the favorite/cart remove endpoints.
func relationRemove(c *gin.Context, remove func(ctx context.Context, userID, recipeID int64) error) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a positive integer")
		return
	}
	if err := remove(c.Request.Context(), uid, id); err != nil {
		writeErr(c, err)
		return
	}
	noContent(c)
}

// AddFavorite godoc
// @ID          addFavorite
// @Summary     Favorite a recipe
// @Tags        Favorites
// @Produce     json
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
// @Success     201  {object} services.RecipeShort
// @Failure     400  {object} handlers.ErrorResponse "Already favorited or malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/favorite [post]
func (h *Handlers) AddFavorite(c *gin.Context) {
	relationAdd(c, h.favSvc.Add)
}

// RemoveFavorite godoc
// @ID          removeFavorite
// @Summary     Unfavorite a recipe
// @Tags        Favorites
// @Produce     json
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Not favorited or malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Router      /recipes/{id}/favorite [delete]
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	relationRemove(c, h.favSvc.Remove)
}

// AddToCart godoc
// @ID          addToCart
// @Summary     Add a recipe to the shopping cart
// @Tags        ShoppingCart
// @Produce     json
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
// @Success     201  {object} services.RecipeShort
// @Failure     400  {object} handlers.ErrorResponse "Already in cart or malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/shopping_cart [post]
func (h *Handlers) AddToCart(c *gin.Context) {
	relationAdd(c, h.cartSvc.Add)
}

// RemoveFromCart godoc
// @ID          removeFromCart
// @Summary     Remove a recipe from the shopping cart
// @Tags        ShoppingCart
// @Produce     json
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Not in cart or malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Router      /recipes/{id}/shopping_cart [delete]
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	relationRemove(c, h.cartSvc.Remove)
}

// DownloadShoppingCart godoc
// @ID          downloadShoppingCart
// @Summary     Download the merged shopping list
// @Description Aggregates every ingredient line across the cart's recipes, grouped by (name, unit) with summed amounts, and returns a plain-text attachment.
// @Tags        ShoppingCart
// @Produce     plain
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Success     200  {string} string "Plain-text shopping list"
// @Header      200  {string} Content-Disposition "attachment; filename=<username>_shopping_list.txt"
// @Failure     400  {object} handlers.ErrorResponse "Empty cart"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Router      /recipes/download_shopping_cart [get]
func (h *Handlers) DownloadShoppingCart(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	list, err := h.listSvc.Render(c.Request.Context(), uid)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+list.Filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list.Content))
}
