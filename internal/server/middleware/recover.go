package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glosshub/glosshub/internal/log"
)

// Recovery converts panics into 500 responses and logs them with the
// request's trace fields.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered", log.Any("panic", r))
				AbortWithError(c, http.StatusInternalServerError, errors.New("internal server error"))
			}
		}()

		c.Next()
	}
}
