package middleware

import (
	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error as
// {"error":{"message","code"}}. Client errors are logged at WARN, the rest at
// ERROR.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		appErr := apperrors.MapError(c.Errors.Last().Err)

		if appErr.HTTPStatus >= 500 {
			log.Errorf("Request failed: path=%s, method=%s, client_ip=%s, error=%s",
				c.Request.URL.Path, c.Request.Method, c.ClientIP(), appErr.TechnicalMessage)
		} else {
			log.Warnf("Request rejected: path=%s, method=%s, status=%d, error=%s",
				c.Request.URL.Path, c.Request.Method, appErr.HTTPStatus, appErr.TechnicalMessage)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.HTTPStatus, gin.H{
			"error": gin.H{
				"message": appErr.UserMessage,
				"code":    appErr.Code,
			},
		})
	}
}
