package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
			"path":    path,
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}

// DownloadLogger logs generated document downloads such as receipts and
// reports.
func DownloadLogger(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.InfoLogger.Printf("Generating %s %s", kind, c.Param("order_id"))

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Printf("%s generated successfully (user %d)", kind, UserID(c))
		} else {
			utils.ErrorLogger.Printf("Failed to generate %s (status %d)", kind, c.Writer.Status())
		}
	}
}
