// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → identity → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/config"
	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/http/handlers"
	"github.com/tbourn/go-recipe-backend/internal/http/middleware"
	"github.com/tbourn/go-recipe-backend/internal/media"
	"github.com/tbourn/go-recipe-backend/internal/repo"
	"github.com/tbourn/go-recipe-backend/internal/services"
)

// recipeRepoShim adapts the repository free functions to the
// services.RecipeRepo interface expected by the RecipeService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type recipeRepoShim struct{}

// GetTagsByIDs proxies repo.GetTagsByIDs.
func (recipeRepoShim) GetTagsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Tag, error) {
	return repo.GetTagsByIDs(ctx, db, ids)
}

// GetIngredientsByIDs proxies repo.GetIngredientsByIDs.
func (recipeRepoShim) GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Ingredient, error) {
	return repo.GetIngredientsByIDs(ctx, db, ids)
}

// FindOrCreateLine proxies repo.FindOrCreateLine.
func (recipeRepoShim) FindOrCreateLine(ctx context.Context, db *gorm.DB, ingredientID, amount int64) (*domain.IngredientLine, error) {
	return repo.FindOrCreateLine(ctx, db, ingredientID, amount)
}

// CreateRecipe proxies repo.CreateRecipe.
func (recipeRepoShim) CreateRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	return repo.CreateRecipe(ctx, db, r)
}

// GetRecipe proxies repo.GetRecipe.
func (recipeRepoShim) GetRecipe(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, db, id)
}

// CountRecipes proxies repo.CountRecipes (pagination support).
func (recipeRepoShim) CountRecipes(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountRecipes(ctx, db)
}

// ListRecipesPage proxies repo.ListRecipesPage (pagination support).
func (recipeRepoShim) ListRecipesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesPage(ctx, db, offset, limit)
}

// UpdateRecipeScalars proxies repo.UpdateRecipeScalars.
func (recipeRepoShim) UpdateRecipeScalars(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	return repo.UpdateRecipeScalars(ctx, db, r)
}

// ReplaceTags proxies repo.ReplaceTags.
func (recipeRepoShim) ReplaceTags(ctx context.Context, db *gorm.DB, r *domain.Recipe, tags []domain.Tag) error {
	return repo.ReplaceTags(ctx, db, r, tags)
}

// ReplaceLines proxies repo.ReplaceLines.
func (recipeRepoShim) ReplaceLines(ctx context.Context, db *gorm.DB, r *domain.Recipe, lines []domain.IngredientLine) error {
	return repo.ReplaceLines(ctx, db, r, lines)
}

// DeleteRecipe proxies repo.DeleteRecipe.
func (recipeRepoShim) DeleteRecipe(ctx context.Context, db *gorm.DB, id, authorID int64) error {
	return repo.DeleteRecipe(ctx, db, id, authorID)
}

// IsFavorited proxies repo.IsFavorited (viewer flag support).
func (recipeRepoShim) IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID int64) (bool, error) {
	return repo.IsFavorited(ctx, db, userID, recipeID)
}

// InCart proxies repo.InCart (viewer flag support).
func (recipeRepoShim) InCart(ctx context.Context, db *gorm.DB, userID, recipeID int64) (bool, error) {
	return repo.InCart(ctx, db, userID, recipeID)
}

// IsSubscribed proxies repo.IsSubscribed (viewer flag support).
func (recipeRepoShim) IsSubscribed(ctx context.Context, db *gorm.DB, userID, authorID int64) (bool, error) {
	return repo.IsSubscribed(ctx, db, userID, authorID)
}

// catalogRepoShim adapts the repository free functions to services.CatalogRepo.
type catalogRepoShim struct{}

func (catalogRepoShim) ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	return repo.ListTags(ctx, db)
}

func (catalogRepoShim) GetTag(ctx context.Context, db *gorm.DB, id int64) (*domain.Tag, error) {
	return repo.GetTag(ctx, db, id)
}

func (catalogRepoShim) SearchIngredients(ctx context.Context, db *gorm.DB, name string) ([]domain.Ingredient, error) {
	return repo.SearchIngredients(ctx, db, name)
}

func (catalogRepoShim) GetIngredient(ctx context.Context, db *gorm.DB, id int64) (*domain.Ingredient, error) {
	return repo.GetIngredient(ctx, db, id)
}

// relationRepoShim adapts the repository free functions to services.RelationRepo.
type relationRepoShim struct{}

func (relationRepoShim) GetRecipe(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, db, id)
}

func (relationRepoShim) AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	return repo.AddFavorite(ctx, db, userID, recipeID)
}

func (relationRepoShim) RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	return repo.RemoveFavorite(ctx, db, userID, recipeID)
}

func (relationRepoShim) AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	return repo.AddCartItem(ctx, db, userID, recipeID)
}

func (relationRepoShim) RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID int64) error {
	return repo.RemoveCartItem(ctx, db, userID, recipeID)
}

// shoppingListRepoShim adapts the repository free functions to
// services.ShoppingListRepo.
type shoppingListRepoShim struct{}

func (shoppingListRepoShim) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

func (shoppingListRepoShim) CountCartItems(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	return repo.CountCartItems(ctx, db, userID)
}

func (shoppingListRepoShim) SumCartIngredients(ctx context.Context, db *gorm.DB, userID int64) ([]repo.ShoppingListRow, error) {
	return repo.SumCartIngredients(ctx, db, userID)
}

// subscriptionRepoShim adapts the repository free functions to
// services.SubscriptionRepo.
type subscriptionRepoShim struct{}

func (subscriptionRepoShim) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

func (subscriptionRepoShim) Subscribe(ctx context.Context, db *gorm.DB, userID, authorID int64) error {
	return repo.Subscribe(ctx, db, userID, authorID)
}

func (subscriptionRepoShim) Unsubscribe(ctx context.Context, db *gorm.DB, userID, authorID int64) error {
	return repo.Unsubscribe(ctx, db, userID, authorID)
}

func (subscriptionRepoShim) ListSubscribedAuthors(ctx context.Context, db *gorm.DB, userID int64) ([]domain.User, error) {
	return repo.ListSubscribedAuthors(ctx, db, userID)
}

func (subscriptionRepoShim) ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID int64, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesByAuthor(ctx, db, authorID, limit)
}

func (subscriptionRepoShim) CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID int64) (int64, error) {
	return repo.CountRecipesByAuthor(ctx, db, authorID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: parse the trusted X-User-ID header
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter and gzip
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, images *media.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Resolve the caller before anything that keys on identity
	r.Use(middleware.Identity())

	// 4) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderUserID, // identity header stays out of logs
		},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (4 MiB; payloads embed base64 images) + gzip
	r.Use(limitBody(4 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	recipesRoute := apiBase + "/recipes"
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID int64, route, key string, now time.Time) (bool, error) {
			if route != recipesRoute {
				return false, nil
			}
			rec, err := repo.GetIdempotency(ctx, db, userID, "recipes", key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Stored recipe images
	r.Static("/media", filepath.Dir(cfg.MediaDir))

	// Dependency injection: services ← repo/db/media
	recipeSvc := services.NewRecipeService(db, recipeRepoShim{}, images)
	catalogSvc := &services.CatalogService{DB: db, Repo: catalogRepoShim{}}
	favSvc := &services.FavoriteService{DB: db, Repo: relationRepoShim{}}
	cartSvc := &services.CartService{DB: db, Repo: relationRepoShim{}}
	subSvc := &services.SubscriptionService{DB: db, Repo: subscriptionRepoShim{}}
	listSvc := services.NewShoppingListService(db, shoppingListRepoShim{})
	h := handlers.New(recipeSvc, catalogSvc, favSvc, cartSvc, subSvc, listSvc)

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Recipes
		api.POST("/recipes", h.CreateRecipe)
		api.GET("/recipes", h.ListRecipes)
		api.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart)
		api.GET("/recipes/:id", h.GetRecipe)
		api.PATCH("/recipes/:id", h.UpdateRecipe)
		api.DELETE("/recipes/:id", h.DeleteRecipe)

		// Collections
		api.POST("/recipes/:id/favorite", h.AddFavorite)
		api.DELETE("/recipes/:id/favorite", h.RemoveFavorite)
		api.POST("/recipes/:id/shopping_cart", h.AddToCart)
		api.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)

		// Catalogs
		api.GET("/tags", h.ListTags)
		api.GET("/tags/:id", h.GetTag)
		api.GET("/ingredients", h.ListIngredients)
		api.GET("/ingredients/:id", h.GetIngredient)

		// Subscriptions
		api.GET("/users/subscriptions", h.ListSubscriptions)
		api.POST("/users/:id/subscribe", h.Subscribe)
		api.DELETE("/users/:id/subscribe", h.Unsubscribe)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
