package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

// WebSocketAuthMiddleware reads the token from the query string, since
// browsers cannot set headers on websocket requests. Anonymous clients may
// connect for public tables; a bad token is rejected.
func WebSocketAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.Next()
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil || claims.UserID == 0 {
			c.AbortWithStatus(401)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextToken, token)
		c.Next()
	}
}
