package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/server/respond"
	"docanalysis-backend/internal/shared/util"
)

const clientIDKey = "clientId"

// APIKey rejects requests that do not carry the configured key in X-API-Key
// or an Authorization bearer token. Paths in open are always allowed.
func APIKey(key string, open ...string) gin.HandlerFunc {
	expected := []byte(key)
	public := make(map[string]struct{}, len(open))
	for _, p := range open {
		public[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if _, ok := public[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if provided == "" {
			authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
			if strings.HasPrefix(authHeader, "Bearer ") {
				provided = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			}
		}

		if len(expected) == 0 || provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid api key", nil)
			return
		}

		c.Set(clientIDKey, "key:"+util.HashKey(provided)[:12])
		c.Next()
	}
}

// ClientIDFromContext returns the authenticated client, or "" when the
// request was not authenticated.
func ClientIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(clientIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
