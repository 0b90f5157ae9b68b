package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/auth"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/store"
)

const (
	identityKey = "identity"
	tokenKey    = "token"
)

// Auth gates a route group for one role: it extracts the bearer token,
// verifies its signature under the role's secret, then confirms the token is
// still listed on the identity document. Any failure aborts with 401; the
// signature check alone is never enough because logout revokes by removing
// the token from the list.
func Auth(st store.IdentityStore, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		identityID, err := auth.VerifyToken(role, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
			return
		}

		ident, err := st.FindByIDWithToken(c.Request.Context(), role, identityID, tokenStr)
		if err != nil {
			// Covers a deleted identity and a revoked token alike.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
			return
		}

		c.Set(identityKey, ident)
		c.Set(tokenKey, tokenStr)
		c.Next()
	}
}

// Identity returns the identity resolved by Auth for this request.
func Identity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	return v.(*models.Identity)
}

// Token returns the raw bearer token Auth accepted for this request.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
