// Package domain defines the persistence models for the recipe-sharing
// service: users, tags, the ingredient catalog, recipes with their tag and
// ingredient-line associations, and the per-user relations (favorites,
// shopping cart, subscriptions). These types are mapped with GORM and form
// the core data layer of the application.
package domain

import (
	"time"
)

// User is the account projection this service consumes. Registration and
// authentication live upstream; this table only mirrors the identity fields
// needed to expand recipe authors and render shopping-list headers.
//
// Fields:
//   - ID: integer primary key (matches the ids carried on the wire).
//   - Email / Username: unique identity fields.
//   - FirstName / LastName: used for the shopping-list header.
type User struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex"`
	Username  string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex"`
	FirstName string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName  string    `json:"last_name"  gorm:"type:varchar(150)"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// FullName joins first and last name for display (shopping-list header).
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Tag is reference data managed outside this core. Name, color, and slug are
// all unique; color is a hex value rendered by the frontend.
type Tag struct {
	ID    int64  `json:"id"    gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"type:varchar(200);not null;uniqueIndex"`
	Color string `json:"color" gorm:"type:varchar(7);not null;uniqueIndex"`
	Slug  string `json:"slug"  gorm:"type:varchar(200);not null;uniqueIndex"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// Ingredient is a catalog entry: the canonical (name, measurement unit)
// definition an ingredient line points at. Catalog rows are read-only from
// the recipe write path.
//
// NameFold holds a case-folded copy of Name maintained by the repository so
// that name search works for non-ASCII alphabets on every driver.
type Ingredient struct {
	ID              int64  `json:"id"               gorm:"primaryKey;autoIncrement"`
	Name            string `json:"name"             gorm:"type:varchar(200);not null"`
	NameFold        string `json:"-"                gorm:"type:varchar(200);not null;index"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(50);not null"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string { return "ingredients" }

// IngredientLine is the (catalog entry, amount) pairing attached to recipes.
// Lines are content-addressed: unique(ingredient_id, amount) means two
// recipes asking for "flour, 200" share one row. Lines are never mutated
// after creation; a different amount is a different line.
type IngredientLine struct {
	ID           int64 `json:"id"     gorm:"primaryKey;autoIncrement"`
	IngredientID int64 `json:"-"      gorm:"not null;uniqueIndex:ux_line_ingredient_amount,priority:1"`
	Amount       int64 `json:"amount" gorm:"not null;check:amount > 0;uniqueIndex:ux_line_ingredient_amount,priority:2"`

	// Ingredient is the catalog entry this line measures. Lines are
	// cascade-deleted if the catalog entry is removed.
	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for IngredientLine.
func (IngredientLine) TableName() string { return "ingredient_lines" }

// Recipe is the central aggregate: scalar fields plus two many-to-many
// associations (tags and ingredient lines) that are wholesale-replaced on
// every update.
//
// Fields:
//   - AuthorID: owner; only the author may update or delete the recipe.
//   - Image: repository-relative path of the stored image file.
//   - Text: the cooking instructions ("description" on the wire).
//   - CookingTime: minutes, within [1, 10000].
//   - PubDate: publication timestamp, set on create.
type Recipe struct {
	ID          int64     `json:"id"           gorm:"primaryKey;autoIncrement"`
	AuthorID    int64     `json:"-"            gorm:"not null;index"`
	Name        string    `json:"name"         gorm:"type:varchar(200);not null"`
	Image       string    `json:"image"        gorm:"type:varchar(500);not null"`
	Text        string    `json:"text"         gorm:"type:text;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null;check:cooking_time BETWEEN 1 AND 10000"`
	PubDate     time.Time `json:"-"            gorm:"not null;index"`
	UpdatedAt   time.Time `json:"-"`

	Author          User             `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tags            []Tag            `json:"-" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	IngredientLines []IngredientLine `json:"-" gorm:"many2many:recipe_ingredient_lines;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// Favorite marks a recipe as favorited by a user. One row per (user, recipe).
type Favorite struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64 `gorm:"not null;index;uniqueIndex:ux_favorite_user_recipe,priority:1"`
	RecipeID int64 `gorm:"not null;uniqueIndex:ux_favorite_user_recipe,priority:2"`

	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// CartItem puts a recipe into a user's shopping cart. One row per
// (user, recipe); the aggregator reads these to build the shopping list.
type CartItem struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64 `gorm:"not null;index;uniqueIndex:ux_cart_user_recipe,priority:1"`
	RecipeID int64 `gorm:"not null;uniqueIndex:ux_cart_user_recipe,priority:2"`

	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CartItem.
func (CartItem) TableName() string { return "cart_items" }

// Subscription follows an author. One row per (user, author); a user may not
// follow themselves (enforced in the service layer).
type Subscription struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64 `gorm:"not null;index;uniqueIndex:ux_subscription_user_author,priority:1"`
	AuthorID int64 `gorm:"not null;index;uniqueIndex:ux_subscription_user_author,priority:2"`

	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }
