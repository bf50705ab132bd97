// Catalog HTTP handlers.
//
// This file exposes the read-only reference catalogs:
//   - GET /tags                 (all tags)
//   - GET /tags/{id}            (one tag)
//   - GET /ingredients          (search by name prefix)
//   - GET /ingredients/{id}     (one catalog entry)
//
// Catalog content is managed out of band; these endpoints only serve it.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/utils"
)

// CatalogService defines the tag and ingredient catalog reads consumed by
// HTTP handlers.
type CatalogService interface {
	// ListTags returns every tag ordered by name.
	ListTags(ctx context.Context) ([]domain.Tag, error)
	// GetTag returns one tag by id.
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	// ListIngredients returns catalog entries, optionally filtered by a
	// fold-insensitive name prefix.
	ListIngredients(ctx context.Context, name string) ([]domain.Ingredient, error)
	// GetIngredient returns one catalog entry by id.
	GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error)
}

// ListTags godoc
// @ID          listTags
// @Summary     List all tags
// @Tags        Catalog
// @Produce     json
// @Success     200  {array}  domain.Tag
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tags [get]
func (h *Handlers) ListTags(c *gin.Context) {
	tags, err := h.catalogSvc.ListTags(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, tags)
}

// GetTag godoc
// @ID          getTag
// @Summary     Fetch one tag
// @Tags        Catalog
// @Produce     json
// @Param       id  path  int  true  "Tag id"  example(2)
// @Success     200  {object} domain.Tag
// @Failure     400  {object} handlers.ErrorResponse "Malformed id"
// @Failure     404  {object} handlers.ErrorResponse "Tag not found"
// @Router      /tags/{id} [get]
func (h *Handlers) GetTag(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tag id must be a positive integer")
		return
	}
	tag, err := h.catalogSvc.GetTag(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

// ListIngredients godoc
// @ID          listIngredients
// @Summary     List ingredients
// @Description Returns catalog entries ordered by name. The name query filters by case-insensitive prefix.
// @Tags        Catalog
// @Produce     json
// @Param       name  query  string  false  "Name prefix filter"  example(flo)
// @Success     200  {array}  domain.Ingredient
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ingredients [get]
func (h *Handlers) ListIngredients(c *gin.Context) {
	items, err := h.catalogSvc.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetIngredient godoc
// @ID          getIngredient
// @Summary     Fetch one ingredient
// @Tags        Catalog
// @Produce     json
// @Param       id  path  int  true  "Ingredient id"  example(7)
// @Success     200  {object} domain.Ingredient
// @Failure     400  {object} handlers.ErrorResponse "Malformed id"
// @Failure     404  {object} handlers.ErrorResponse "Ingredient not found"
// @Router      /ingredients/{id} [get]
func (h *Handlers) GetIngredient(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ingredient id must be a positive integer")
		return
	}
	ing, err := h.catalogSvc.GetIngredient(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, ing)
}
