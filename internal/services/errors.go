// Package services defines the business logic for recipes, favorites, the
// shopping cart, and author subscriptions. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Recipe write-path validation errors. All of them are detected before any
// mutation is committed; a payload failing validation leaves the database
// untouched.
var (
	// ErrEmptyIngredientList is returned when the ingredients array is empty.
	ErrEmptyIngredientList = errors.New("ingredients must not be empty")

	// ErrUnknownIngredient is returned when an ingredient id does not
	// reference an existing catalog entry.
	ErrUnknownIngredient = errors.New("ingredient does not exist")

	// ErrDuplicateIngredient is returned when two ingredient entries
	// reference the same catalog entry, regardless of differing amounts.
	ErrDuplicateIngredient = errors.New("ingredient repeated in payload")

	// ErrNonPositiveAmount is returned when an ingredient amount is <= 0.
	ErrNonPositiveAmount = errors.New("ingredient amount must be positive")

	// ErrEmptyTagList is returned when the tags array is empty.
	ErrEmptyTagList = errors.New("at least one tag is required")

	// ErrUnknownTag is returned when a tag id does not exist.
	ErrUnknownTag = errors.New("tag does not exist")

	// ErrDuplicateTag is returned when the same tag id appears twice.
	ErrDuplicateTag = errors.New("tags must be unique")

	// ErrMissingImage is returned when the image is absent on create.
	ErrMissingImage = errors.New("recipe image is required")

	// ErrInvalidImage is returned when the image payload cannot be decoded.
	ErrInvalidImage = errors.New("recipe image is not a valid base64 image")

	// ErrMissingRequiredField is returned on update when the tags or
	// ingredients key is absent from the payload (partial updates are
	// rejected entirely).
	ErrMissingRequiredField = errors.New("tags and ingredients fields are required")

	// ErrInvalidCookingTime is returned when cooking_time falls outside
	// [1, 10000].
	ErrInvalidCookingTime = errors.New("cooking time must be between 1 and 10000")
)

// Lookup and ownership errors.
var (
	// ErrRecipeNotFound indicates that the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrNotRecipeAuthor is returned when a user attempts to modify a
	// recipe they do not own.
	ErrNotRecipeAuthor = errors.New("only the author may modify this recipe")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTagNotFound indicates that the requested tag does not exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrIngredientNotFound indicates that the requested catalog entry does
	// not exist.
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// Relation errors (favorites, shopping cart, subscriptions).
var (
	// ErrAlreadyFavorited is returned when a favorite already exists.
	ErrAlreadyFavorited = errors.New("recipe already favorited")

	// ErrNotFavorited is returned when removing a favorite that is absent.
	ErrNotFavorited = errors.New("recipe is not favorited")

	// ErrAlreadyInCart is returned when a cart entry already exists.
	ErrAlreadyInCart = errors.New("recipe already in shopping cart")

	// ErrNotInCart is returned when removing a cart entry that is absent.
	ErrNotInCart = errors.New("recipe is not in the shopping cart")

	// ErrEmptyCart is returned by the shopping-list aggregator when the
	// user's cart has no entries; no report is produced.
	ErrEmptyCart = errors.New("shopping cart is empty")

	// ErrSelfSubscribe is returned when a user attempts to follow themselves.
	ErrSelfSubscribe = errors.New("cannot subscribe to yourself")

	// ErrAlreadySubscribed is returned when the subscription already exists.
	ErrAlreadySubscribed = errors.New("already subscribed to this author")

	// ErrNotSubscribed is returned when unsubscribing without a subscription.
	ErrNotSubscribed = errors.New("not subscribed to this author")
)
