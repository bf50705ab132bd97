// Subscription HTTP handlers.
//
// This file exposes the author-follow relation:
//   - POST   /users/{id}/subscribe   (follow an author)
//   - DELETE /users/{id}/subscribe   (unfollow)
//   - GET    /users/subscriptions    (followed authors with their recipes)
//
// Subscription listings embed each author's recipes in short form; the
// recipes_limit query bounds how many are included per author (0 = all).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-backend/internal/services"
	"github.com/tbourn/go-recipe-backend/internal/utils"
)

// SubscriptionService defines the author-follow operations consumed by HTTP
// handlers.
type SubscriptionService interface {
	// Subscribe follows an author and returns the author entry.
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*services.AuthorResponse, error)
	// Unsubscribe removes the follow relation.
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	// List returns every followed author with recipes and counts.
	List(ctx context.Context, userID int64, recipesLimit int) ([]services.AuthorResponse, error)
}

// recipesLimit parses the recipes_limit query param; 0 means no limit and
// negative values are coerced to 0.
func recipesLimit(c *gin.Context) int {
	n := utils.AtoiDefault(c.Query("recipes_limit"), 0)
	if n < 0 {
		n = 0
	}
	return n
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Follow an author
// @Tags        Subscriptions
// @Produce     json
// @Param       X-User-ID      header  int  true  "Authenticated user id"        example(3)
// @Param       id             path    int  true  "Author id"                    example(5)
// @Param       recipes_limit  query   int  false "Max recipes per author entry" example(3)
// @Success     201  {object} services.AuthorResponse
// @Failure     400  {object} handlers.ErrorResponse "Self-follow, already subscribed, or malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     404  {object} handlers.ErrorResponse "Author not found"
// @Router      /users/{id}/subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "author id must be a positive integer")
		return
	}
	entry, err := h.subSvc.Subscribe(c.Request.Context(), uid, id, recipesLimit(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusCreated, entry)
}

// Unsubscribe godoc
// @ID          unsubscribe
// @Summary     Unfollow an author
// @Tags        Subscriptions
// @Produce     json
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Author id"              example(5)
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Not subscribed or malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     404  {object} handlers.ErrorResponse "Author not found"
// @Router      /users/{id}/subscribe [delete]
func (h *Handlers) Unsubscribe(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "author id must be a positive integer")
		return
	}
	if err := h.subSvc.Unsubscribe(c.Request.Context(), uid, id); err != nil {
		writeErr(c, err)
		return
	}
	noContent(c)
}

// ListSubscriptions godoc
// @ID          listSubscriptions
// @Summary     List followed authors
// @Tags        Subscriptions
// @Produce     json
// @Param       X-User-ID      header  int  true  "Authenticated user id"        example(3)
// @Param       recipes_limit  query   int  false "Max recipes per author entry" example(3)
// @Success     200  {array}  services.AuthorResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/subscriptions [get]
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	entries, err := h.subSvc.List(c.Request.Context(), uid, recipesLimit(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}
