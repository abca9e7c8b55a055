package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

var ErrAdminRequired = errors.New("Access denied: admin privileges required")

// AdminChecker reads the admin flag of a customer.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
}

// AdminOnly must run after AuthMiddleware. The customer row is read on every
// request so revoked admins lose access at once.
func AdminOnly(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil || !isAdmin {
			if err != nil {
				utils.LogError("admin check", err, map[string]interface{}{"user_id": userID})
			}
			utils.RespondError(c, http.StatusForbidden, ErrAdminRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}
