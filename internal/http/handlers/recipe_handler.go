// Recipe HTTP handlers.
//
// This file exposes REST endpoints for recipe resources:
//   - POST   /recipes        (create, idempotent via Idempotency-Key)
//   - GET    /recipes        (list, paginated, ETag support)
//   - GET    /recipes/{id}   (fetch one)
//   - PATCH  /recipes/{id}   (full-replacement update)
//   - DELETE /recipes/{id}   (delete, author only)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/http/middleware"
	"github.com/tbourn/go-recipe-backend/internal/repo"
	"github.com/tbourn/go-recipe-backend/internal/services"
	"github.com/tbourn/go-recipe-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// RecipeService defines recipe lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RecipeService interface {
	// Create validates and persists a new recipe owned by authorID.
	Create(ctx context.Context, authorID int64, in services.RecipeInput) (*services.RecipeResponse, error)
	// Update replaces a recipe's fields and association sets wholesale.
	Update(ctx context.Context, userID, recipeID int64, in services.RecipeUpdateInput) (*services.RecipeResponse, error)
	// Get returns the expanded read model; viewer may be nil (anonymous).
	Get(ctx context.Context, viewer *int64, id int64) (*services.RecipeResponse, error)
	// ListPage returns a page of expanded recipes and the total count.
	ListPage(ctx context.Context, viewer *int64, page, pageSize int) ([]services.RecipeResponse, int64, error)
	// Delete removes a recipe owned by userID.
	Delete(ctx context.Context, userID, recipeID int64) error
}

//
// Handler wiring
//

// idemScopeRecipes scopes stored idempotency records to recipe creation.
const idemScopeRecipes = "recipes"

// idemTTL bounds how long a stored recipe-creation result can be replayed.
const idemTTL = 24 * time.Hour

// Handlers groups HTTP endpoints for recipes, catalogs, collections, and
// subscriptions. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	recipeSvc  RecipeService
	catalogSvc CatalogService
	favSvc     FavoriteService
	cartSvc    CartService
	subSvc     SubscriptionService
	listSvc    ShoppingListService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(
	recipeSvc RecipeService,
	catalogSvc CatalogService,
	favSvc FavoriteService,
	cartSvc CartService,
	subSvc SubscriptionService,
	listSvc ShoppingListService,
) *Handlers {
	return &Handlers{
		recipeSvc:  recipeSvc,
		catalogSvc: catalogSvc,
		favSvc:     favSvc,
		cartSvc:    cartSvc,
		subSvc:     subSvc,
		listSvc:    listSvc,
	}
}

// viewerID returns the authenticated viewer as a nullable id: nil for
// anonymous requests, which forces all viewer-dependent flags to false.
func viewerID(c *gin.Context) *int64 {
	if id, authed := middleware.UserID(c); authed {
		return &id
	}
	return nil
}

// requireUser extracts the authenticated user id or answers 401.
func requireUser(c *gin.Context) (int64, bool) {
	id, authed := middleware.UserID(c)
	if !authed {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	}
	return id, authed
}

// recipeDB exposes the GORM handle behind the recipe service when the
// concrete implementation is used. ETag pre-checks and idempotency record
// persistence are best-effort features layered on top of the service
// interface, so a fake service in tests simply skips them.
func (h *Handlers) recipeDB() *gorm.DB {
	if svc, ok := h.recipeSvc.(*services.RecipeService); ok {
		return svc.DB
	}
	return nil
}

//
// DTOs
//

// IngredientAmountRequest is one submitted ingredient entry.
type IngredientAmountRequest struct {
	// ID references an ingredient catalog entry.
	ID int64 `json:"id" example:"7"`
	// Amount is the measured quantity in the catalog entry's unit.
	Amount int64 `json:"amount" example:"200"`
}

// CreateRecipeRequest is the JSON payload for creating a recipe.
type CreateRecipeRequest struct {
	Name        string                    `json:"name" binding:"required,min=1,max=200" example:"Pancakes"`
	Text        string                    `json:"text" binding:"required" example:"Mix and fry."`
	CookingTime int                       `json:"cooking_time" example:"25"`
	Image       string                    `json:"image" example:"data:image/png;base64,iVBORw0..."`
	Tags        []int64                   `json:"tags"`
	Ingredients []IngredientAmountRequest `json:"ingredients"`
}

// UpdateRecipeRequest is the JSON payload for updating a recipe. Tags and
// Ingredients are pointers so an absent key is distinguishable from an empty
// list; absent keys reject the whole update. A nil image keeps the stored
// file.
type UpdateRecipeRequest struct {
	Name        string                     `json:"name" binding:"required,min=1,max=200"`
	Text        string                     `json:"text" binding:"required"`
	CookingTime int                        `json:"cooking_time"`
	Image       *string                    `json:"image"`
	Tags        *[]int64                   `json:"tags"`
	Ingredients *[]IngredientAmountRequest `json:"ingredients"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRecipesResponse wraps a page of recipes and pagination information.
type ListRecipesResponse struct {
	Recipes    []services.RecipeResponse `json:"recipes"`
	Pagination Pagination                `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 6
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// writeErr maps a service error to an HTTP status and stable code. Unknown
// errors become 500 internal_error without leaking detail.
func writeErr(c *gin.Context, err error) {
	type mapping struct {
		err    error
		status int
		code   string
	}
	mappings := []mapping{
		{services.ErrEmptyIngredientList, http.StatusBadRequest, ErrCodeEmptyIngredients},
		{services.ErrUnknownIngredient, http.StatusBadRequest, ErrCodeUnknownIngredient},
		{services.ErrDuplicateIngredient, http.StatusBadRequest, ErrCodeDuplicateIngredient},
		{services.ErrNonPositiveAmount, http.StatusBadRequest, ErrCodeNonPositiveAmount},
		{services.ErrEmptyTagList, http.StatusBadRequest, ErrCodeEmptyTags},
		{services.ErrUnknownTag, http.StatusBadRequest, ErrCodeUnknownTag},
		{services.ErrDuplicateTag, http.StatusBadRequest, ErrCodeDuplicateTag},
		{services.ErrMissingImage, http.StatusBadRequest, ErrCodeMissingImage},
		{services.ErrInvalidImage, http.StatusBadRequest, ErrCodeInvalidImage},
		{services.ErrMissingRequiredField, http.StatusBadRequest, ErrCodeMissingField},
		{services.ErrInvalidCookingTime, http.StatusBadRequest, ErrCodeInvalidCookingTime},
		{services.ErrRecipeNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrTagNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrIngredientNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrNotRecipeAuthor, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrAlreadyFavorited, http.StatusBadRequest, ErrCodeConflict},
		{services.ErrNotFavorited, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrAlreadyInCart, http.StatusBadRequest, ErrCodeConflict},
		{services.ErrNotInCart, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrEmptyCart, http.StatusBadRequest, ErrCodeEmptyCart},
		{services.ErrSelfSubscribe, http.StatusBadRequest, ErrCodeSelfSubscribe},
		{services.ErrAlreadySubscribed, http.StatusBadRequest, ErrCodeConflict},
		{services.ErrNotSubscribed, http.StatusBadRequest, ErrCodeBadRequest},
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			fail(c, m.status, m.code, m.err.Error())
			return
		}
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
}

// toAmounts converts request ingredient entries into the service shape.
func toAmounts(in []IngredientAmountRequest) []services.IngredientAmount {
	out := make([]services.IngredientAmount, 0, len(in))
	for _, item := range in {
		out = append(out, services.IngredientAmount{ID: item.ID, Amount: item.Amount})
	}
	return out
}

//
// Handlers
//

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a new recipe
// @Description Validates tags and ingredients, persists the recipe, and returns the expanded read model. Safe to retry with an Idempotency-Key header.
// @Tags        Recipes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  int     true  "Authenticated user id"  example(3)
// @Param       Idempotency-Key  header  string  false "Stable key for safe retries"
// @Param       body             body    handlers.CreateRecipeRequest  true  "Create recipe payload"
//
// @Success     201  {object}  services.RecipeResponse
// @Success     200  {object}  services.RecipeResponse  "Replayed result for a repeated Idempotency-Key"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failure"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recipes [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()

	// Replay a previously stored result when the same key arrives again.
	key, hasKey := middleware.GetIdempotencyKey(c)
	db := h.recipeDB()
	if hasKey && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, uid, idemScopeRecipes, key, time.Now().UTC()); err == nil {
			if resp, err := h.recipeSvc.Get(ctx, &uid, rec.RecipeID); err == nil {
				ok(c, http.StatusOK, resp)
				return
			}
		}
	}

	resp, err := h.recipeSvc.Create(ctx, uid, services.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		Tags:        req.Tags,
		Ingredients: toAmounts(req.Ingredients),
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	// Record the result so retries with the same key replay it. Best effort:
	// a failed insert only costs the caller idempotency, not the recipe.
	if hasKey && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, uid, idemScopeRecipes, key, resp.ID, http.StatusCreated, idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusCreated, resp)
}

// ListRecipes godoc
// @ID          listRecipes
// @Summary     List recipes (paginated)
// @Description Returns a page of recipes, newest publication first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Recipes
// @Produce     json
//
// @Param       X-User-ID      header  int     false "Authenticated user id"       example(3)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(6)
//
// @Success     200  {object} handlers.ListRecipesResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := viewerID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). The flags in the payload depend on the
	// viewer, so the viewer id participates in the tag.
	if db := h.recipeDB(); db != nil {
		count, maxTS, err := repo.RecipesStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			var vid int64
			if viewer != nil {
				vid = *viewer
			}
			etag := fmt.Sprintf(`W/"recipes:%d:%d:%d"`, vid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	// Fetch page.
	items, total, err := h.recipeSvc.ListPage(ctx, viewer, page, pageSize)
	if err != nil {
		writeErr(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListRecipesResponse{
		Recipes: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Fetch one recipe
// @Description Returns the expanded read model for a single recipe. Viewer-dependent flags are false for anonymous callers.
// @Tags        Recipes
// @Produce     json
//
// @Param       X-User-ID  header  int  false "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
//
// @Success     200  {object} services.RecipeResponse
// @Failure     400  {object} handlers.ErrorResponse "Malformed id"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a positive integer")
		return
	}

	resp, err := h.recipeSvc.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// UpdateRecipe godoc
// @ID          updateRecipe
// @Summary     Update a recipe
// @Description Replaces the recipe's fields and both association sets wholesale. Payloads missing the tags or ingredients key are rejected entirely. Author only.
// @Tags        Recipes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
// @Param       body       body    handlers.UpdateRecipeRequest  true  "Update recipe payload"
//
// @Success     200  {object} services.RecipeResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes/{id} [patch]
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a positive integer")
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.RecipeUpdateInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		Tags:        req.Tags,
	}
	if req.Ingredients != nil {
		amounts := toAmounts(*req.Ingredients)
		in.Ingredients = &amounts
	}

	resp, err := h.recipeSvc.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// DeleteRecipe godoc
// @ID          deleteRecipe
// @Summary     Delete a recipe
// @Description Removes a recipe owned by the current user.
// @Tags        Recipes
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Authenticated user id"  example(3)
// @Param       id         path    int  true  "Recipe id"              example(17)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Malformed id"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id} [delete]
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a positive integer")
		return
	}

	if err := h.recipeSvc.Delete(c.Request.Context(), uid, id); err != nil {
		writeErr(c, err)
		return
	}
	noContent(c)
}
