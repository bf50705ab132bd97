// Package services – RecipeService
//
// This file implements the RecipeService, which owns the recipe write path:
// it validates the submitted tag set and ingredient/quantity set, persists
// the recipe and its associations inside a single transaction, and renders
// the expanded read model with viewer-dependent flags. Create and update
// share one validation sequence; update uses full-replacement semantics for
// both association sets and rejects payloads missing either key.
//
// Service-level errors (ErrEmptyIngredientList, ErrUnknownIngredient, …) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

// RecipeRepo defines the repository contract required by RecipeService.
// Implementations are responsible for persistence of the recipe aggregate
// and the catalog lookups the validation sequence needs.
type RecipeRepo interface {
	// GetTagsByIDs resolves tag ids; missing ids are absent from the result.
	GetTagsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Tag, error)

	// GetIngredientsByIDs resolves catalog ids; missing ids are absent.
	GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Ingredient, error)

	// FindOrCreateLine returns the shared line for (ingredientID, amount).
	FindOrCreateLine(ctx context.Context, db *gorm.DB, ingredientID, amount int64) (*domain.IngredientLine, error)

	// CreateRecipe inserts the scalar recipe row.
	CreateRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error

	// GetRecipe fetches a recipe with author, tags, and lines preloaded.
	GetRecipe(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipe, error)

	// CountRecipes returns the total recipe count for pagination.
	CountRecipes(ctx context.Context, db *gorm.DB) (int64, error)

	// ListRecipesPage returns a page of recipes, newest first.
	ListRecipesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Recipe, error)

	// UpdateRecipeScalars writes the scalar fields by primary key.
	UpdateRecipeScalars(ctx context.Context, db *gorm.DB, r *domain.Recipe) error

	// ReplaceTags sets the recipe's tag association to exactly tags.
	ReplaceTags(ctx context.Context, db *gorm.DB, r *domain.Recipe, tags []domain.Tag) error

	// ReplaceLines sets the recipe's line association to exactly lines.
	ReplaceLines(ctx context.Context, db *gorm.DB, r *domain.Recipe, lines []domain.IngredientLine) error

	// DeleteRecipe removes a recipe owned by authorID.
	DeleteRecipe(ctx context.Context, db *gorm.DB, id, authorID int64) error

	// IsFavorited / InCart / IsSubscribed back the viewer flags.
	IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID int64) (bool, error)
	InCart(ctx context.Context, db *gorm.DB, userID, recipeID int64) (bool, error)
	IsSubscribed(ctx context.Context, db *gorm.DB, userID, authorID int64) (bool, error)
}

// ImageStore persists a producer-supplied encoded image and returns the
// stored path recorded on the recipe row.
type ImageStore interface {
	// Save decodes and stores a base64 data-URI image. It returns the
	// repository-relative path of the stored file.
	Save(dataURI string) (string, error)
}

// IngredientAmount is one submitted ingredient entry: a catalog id plus the
// measured amount.
type IngredientAmount struct {
	ID     int64
	Amount int64
}

// RecipeInput is the validated-shape create payload handed in by the HTTP
// layer: field presence is already parsed, semantic validation happens here.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string // base64 data URI; required on create
	Tags        []int64
	Ingredients []IngredientAmount
}

// RecipeUpdateInput is the update payload. Tags and Ingredients are pointers
// so an absent key is distinguishable from an empty list: absent keys reject
// the whole update (no partial merges).
type RecipeUpdateInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       *string // nil keeps the stored image
	Tags        *[]int64
	Ingredients *[]IngredientAmount
}

// UserResponse is the expanded author projection on the read model.
type UserResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// IngredientLineResponse is one expanded ingredient line: catalog identity
// joined in, plus the submitted amount.
type IngredientLineResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// RecipeResponse is the full read model returned after every successful
// write and by the read endpoints. The two boolean flags depend on the
// viewer; both are false for an anonymous viewer.
type RecipeResponse struct {
	ID               int64                    `json:"id"`
	Tags             []domain.Tag             `json:"tags"`
	Author           UserResponse             `json:"author"`
	Ingredients      []IngredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
}

// RecipeService provides recipe lifecycle operations: create, read (with
// viewer context), update, and delete. It enforces the full validation
// sequence before any mutation and keeps each write inside one transaction.
type RecipeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the recipe repository used by this service.
	Repo RecipeRepo
	// Images stores uploaded recipe images.
	Images ImageStore
}

// NewRecipeService constructs a RecipeService.
func NewRecipeService(db *gorm.DB, r RecipeRepo, images ImageStore) *RecipeService {
	return &RecipeService{DB: db, Repo: r, Images: images}
}

// Create validates the payload and persists a new recipe owned by authorID.
//
// Validation runs fully before any write: ingredients (non-empty, known,
// unique, positive amounts), tags (non-empty, known, unique), image
// presence, and the cooking-time bound. On success the recipe row, its tag
// association, and its ingredient lines are committed in one transaction
// and the expanded read model is returned with the author as viewer.
func (s *RecipeService) Create(ctx context.Context, authorID int64, in RecipeInput) (*RecipeResponse, error) {
	if strings.TrimSpace(in.Image) == "" {
		return nil, ErrMissingImage
	}
	tags, ingredients, err := s.validateSets(ctx, s.DB, in.Tags, in.Ingredients)
	if err != nil {
		return nil, err
	}
	if in.CookingTime < 1 || in.CookingTime > 10000 {
		return nil, ErrInvalidCookingTime
	}

	imagePath, err := s.Images.Save(in.Image)
	if err != nil {
		return nil, ErrInvalidImage
	}

	rec := &domain.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Image:       imagePath,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.CreateRecipe(ctx, tx, rec); err != nil {
			return err
		}
		if err := s.Repo.ReplaceTags(ctx, tx, rec, tags); err != nil {
			return err
		}
		return s.attachLines(ctx, tx, rec, ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, &authorID, rec.ID)
}

// Update validates the payload and replaces the recipe's scalar fields and
// both association sets wholesale. Only the author may update; payloads
// missing the tags or ingredients key are rejected entirely, leaving prior
// state unchanged. A nil image keeps the stored file.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID int64, in RecipeUpdateInput) (*RecipeResponse, error) {
	existing, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if existing.AuthorID != userID {
		return nil, ErrNotRecipeAuthor
	}
	if in.Tags == nil || in.Ingredients == nil {
		return nil, ErrMissingRequiredField
	}

	tags, ingredients, err := s.validateSets(ctx, s.DB, *in.Tags, *in.Ingredients)
	if err != nil {
		return nil, err
	}
	if in.CookingTime < 1 || in.CookingTime > 10000 {
		return nil, ErrInvalidCookingTime
	}

	imagePath := existing.Image
	if in.Image != nil && strings.TrimSpace(*in.Image) != "" {
		imagePath, err = s.Images.Save(*in.Image)
		if err != nil {
			return nil, ErrInvalidImage
		}
	}

	rec := &domain.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        strings.TrimSpace(in.Name),
		Image:       imagePath,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.UpdateRecipeScalars(ctx, tx, rec); err != nil {
			return err
		}
		if err := s.Repo.ReplaceTags(ctx, tx, rec, tags); err != nil {
			return err
		}
		return s.attachLines(ctx, tx, rec, ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, &userID, recipeID)
}

// Get returns the expanded read model for one recipe. viewer may be nil
// (anonymous): the favorited/in-cart/subscribed flags are then all false.
func (s *RecipeService) Get(ctx context.Context, viewer *int64, id int64) (*RecipeResponse, error) {
	rec, err := s.Repo.GetRecipe(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return s.render(ctx, viewer, rec)
}

// ListPage returns a page of expanded recipes, newest publication first,
// plus the total count. Defaults are applied for invalid page/pageSize.
func (s *RecipeService) ListPage(ctx context.Context, viewer *int64, page, pageSize int) ([]RecipeResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountRecipes(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []RecipeResponse{}, 0, nil
	}

	items, err := s.Repo.ListRecipesPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RecipeResponse, 0, len(items))
	for i := range items {
		resp, err := s.render(ctx, viewer, &items[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *resp)
	}
	return out, total, nil
}

// Delete removes a recipe owned by userID. ErrRecipeNotFound covers both a
// missing recipe and one owned by someone else when the recipe is gone;
// a foreign recipe yields ErrNotRecipeAuthor.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	rec, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	if rec.AuthorID != userID {
		return ErrNotRecipeAuthor
	}
	return s.Repo.DeleteRecipe(ctx, s.DB, recipeID, userID)
}

// validateSets runs the shared validation sequence over the submitted tag
// and ingredient sets and resolves them against the catalog. No mutation
// happens here; every check precedes every write.
//
// Sequence (ingredients first, mirroring the write-path contract):
//  1. non-empty ingredients
//  2. each id known to the catalog
//  3. no catalog id twice (amounts do not disambiguate)
//  4. each amount positive
//  5. non-empty tags
//  6. each tag id known, no tag id twice
func (s *RecipeService) validateSets(ctx context.Context, db *gorm.DB, tagIDs []int64, ingredients []IngredientAmount) ([]domain.Tag, []resolvedLine, error) {
	if len(ingredients) == 0 {
		return nil, nil, ErrEmptyIngredientList
	}

	ids := make([]int64, 0, len(ingredients))
	for _, item := range ingredients {
		ids = append(ids, item.ID)
	}
	catalog, err := s.Repo.GetIngredientsByIDs(ctx, db, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]domain.Ingredient, len(catalog))
	for _, ing := range catalog {
		byID[ing.ID] = ing
	}

	seen := make(map[int64]struct{}, len(ingredients))
	lines := make([]resolvedLine, 0, len(ingredients))
	for _, item := range ingredients {
		ing, ok := byID[item.ID]
		if !ok {
			return nil, nil, ErrUnknownIngredient
		}
		if _, dup := seen[item.ID]; dup {
			return nil, nil, ErrDuplicateIngredient
		}
		if item.Amount <= 0 {
			return nil, nil, ErrNonPositiveAmount
		}
		seen[item.ID] = struct{}{}
		lines = append(lines, resolvedLine{Ingredient: ing, Amount: item.Amount})
	}

	if len(tagIDs) == 0 {
		return nil, nil, ErrEmptyTagList
	}
	tagSeen := make(map[int64]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := tagSeen[id]; dup {
			return nil, nil, ErrDuplicateTag
		}
		tagSeen[id] = struct{}{}
	}
	tags, err := s.Repo.GetTagsByIDs(ctx, db, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, ErrUnknownTag
	}

	return tags, lines, nil
}

// resolvedLine pairs a catalog entry with its validated amount before the
// backing line row is found or created.
type resolvedLine struct {
	Ingredient domain.Ingredient
	Amount     int64
}

// attachLines finds or creates the shared line row for every validated
// (catalog id, amount) pair and sets the recipe's line association to
// exactly that set.
func (s *RecipeService) attachLines(ctx context.Context, tx *gorm.DB, rec *domain.Recipe, resolved []resolvedLine) error {
	lines := make([]domain.IngredientLine, 0, len(resolved))
	for _, rl := range resolved {
		line, err := s.Repo.FindOrCreateLine(ctx, tx, rl.Ingredient.ID, rl.Amount)
		if err != nil {
			return err
		}
		lines = append(lines, *line)
	}
	return s.Repo.ReplaceLines(ctx, tx, rec, lines)
}

// render builds the read model for rec, computing the viewer-relative flags.
// An anonymous viewer (nil) always reads false flags.
func (s *RecipeService) render(ctx context.Context, viewer *int64, rec *domain.Recipe) (*RecipeResponse, error) {
	var favorited, inCart, subscribed bool
	if viewer != nil {
		var err error
		if favorited, err = s.Repo.IsFavorited(ctx, s.DB, *viewer, rec.ID); err != nil {
			return nil, err
		}
		if inCart, err = s.Repo.InCart(ctx, s.DB, *viewer, rec.ID); err != nil {
			return nil, err
		}
		if subscribed, err = s.Repo.IsSubscribed(ctx, s.DB, *viewer, rec.AuthorID); err != nil {
			return nil, err
		}
	}

	ingredients := make([]IngredientLineResponse, 0, len(rec.IngredientLines))
	for _, line := range rec.IngredientLines {
		ingredients = append(ingredients, IngredientLineResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	tags := rec.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}

	return &RecipeResponse{
		ID:   rec.ID,
		Tags: tags,
		Author: UserResponse{
			Email:        rec.Author.Email,
			ID:           rec.Author.ID,
			Username:     rec.Author.Username,
			FirstName:    rec.Author.FirstName,
			LastName:     rec.Author.LastName,
			IsSubscribed: subscribed,
		},
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             rec.Name,
		Image:            rec.Image,
		Text:             rec.Text,
		CookingTime:      rec.CookingTime,
	}, nil
}
