package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/auth"
)

const CallerAddressKey = "caller_address"

// RequireAuth resolves the caller's wallet address from the bearer token. All
// role checks (admin, borrower, creditor) belong to the contract itself.
func RequireAuth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(CallerAddressKey, claims.Address)
		c.Next()
	}
}

// CallerAddress reads the authenticated address set by RequireAuth.
func CallerAddress(c *gin.Context) string {
	v, _ := c.Get(CallerAddressKey)
	addr, _ := v.(string)
	return addr
}
