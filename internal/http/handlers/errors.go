// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, unauthorized, conflict) mirror common HTTP
//     status semantics to aid interoperability.
//   - Domain-specific codes (e.g., duplicate_ingredient, empty_cart) are reserved
//     for business rules that cannot be conveyed by status alone.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Usage:
//   - Handlers select the most specific matching code and pass it to `fail()` along
//     with the corresponding HTTP status and message.
//   - Clients are expected to branch on these codes for programmatic error handling.
//
// Example response:
//   {
//     "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//     "code": "unknown_ingredient",
//     "message": "ingredient 42 does not exist"
//   }

package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Recipe validation:
	ErrCodeEmptyIngredients    = "empty_ingredient_list"
	ErrCodeUnknownIngredient   = "unknown_ingredient"
	ErrCodeDuplicateIngredient = "duplicate_ingredient"
	ErrCodeNonPositiveAmount   = "non_positive_amount"
	ErrCodeEmptyTags           = "empty_tag_list"
	ErrCodeUnknownTag          = "unknown_tag"
	ErrCodeDuplicateTag        = "duplicate_tag"
	ErrCodeMissingImage        = "missing_image"
	ErrCodeInvalidImage        = "invalid_image"
	ErrCodeMissingField        = "missing_required_field"
	ErrCodeInvalidCookingTime  = "invalid_cooking_time"

	// Collections and subscriptions:
	ErrCodeEmptyCart        = "empty_cart"
	ErrCodeSelfSubscribe    = "self_subscribe"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
