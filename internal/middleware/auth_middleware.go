package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"boardbuilder/internal/apiutil"
	"boardbuilder/internal/auth"
)

// UserIDKey is the gin context key carrying the authenticated user's uuid.
const UserIDKey = "userID"

// RequireAuth rejects requests without a valid Bearer token.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apiutil.AbortError(c, apiutil.CodeUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			apiutil.AbortError(c, apiutil.CodeUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		userIDStr, err := tokens.Parse(parts[1])
		if err != nil {
			apiutil.AbortError(c, apiutil.CodeUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			apiutil.AbortError(c, apiutil.CodeUnauthorized, "Invalid user ID in token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth resolves a Bearer token when one is present but treats its
// absence (or invalidity) as an anonymous request rather than an error.
// Public board reads use this so "no session" is a neutral state.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if userIDStr, err := tokens.Parse(parts[1]); err == nil {
				if userID, err := uuid.Parse(userIDStr); err == nil {
					c.Set(UserIDKey, userID)
				}
			}
		}
		c.Next()
	}
}

// UserID extracts the authenticated user id set by RequireAuth/OptionalAuth.
// The second return is false for anonymous requests.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}
