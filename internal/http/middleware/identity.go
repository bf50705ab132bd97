// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity. Authentication itself is handled
// upstream (an auth proxy or gateway terminates tokens); this service trusts
// the numeric X-User-ID header the proxy injects. Identity() parses the header
// once per request and stashes the id in the Gin context so handlers, the rate
// limiter, and the idempotency validator share a single source of truth.
//
// Requests without the header are anonymous: read-only endpoints serve them
// with viewer-dependent flags forced to false, write endpoints reject them
// with 401.
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderUserID is the trusted header carrying the authenticated user's id.
const HeaderUserID = "X-User-ID"

// ctxKeyUserID is the Gin context key under which the parsed id is stored.
const ctxKeyUserID = "userID"

// Identity parses X-User-ID and stores the id in the request context.
//
// A missing header leaves the request anonymous. A malformed or non-positive
// value is treated the same way rather than rejected, so a broken client sees
// the anonymous behavior instead of an opaque 400.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(HeaderUserID); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set(ctxKeyUserID, id)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id from the Gin context.
// The second return value is false for anonymous requests.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
