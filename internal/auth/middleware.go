package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ownerKey  = "owner"
	claimsKey = "claims"
)

// Options configure OwnerAuth.
type Options struct {
	SigningKey   string
	Issuer       string
	Required     bool   // reject requests without a bearer token
	DefaultOwner string // owner used when no token is sent and Required is false
}

// OwnerAuth resolves the owner of a request from an HS256 bearer token.
// A malformed or invalid token is always rejected.
func OwnerAuth(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			if opts.Required || opts.DefaultOwner == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
				return
			}
			c.Set(ownerKey, opts.DefaultOwner)
			c.Next()
			return
		}
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, opts.SigningKey, opts.Issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(ownerKey, claims.Owner())
		c.Next()
	}
}

// Owner returns the owner resolved by OwnerAuth, or "".
func Owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
