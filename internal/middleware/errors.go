package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/drawdownpulse/internal/domain/dto"
	"github.com/guttosm/drawdownpulse/internal/logger"
)

// AbortWithError stops the handler chain and writes a dto.ErrorResponse.
//
// Parameters:
//   - c: the current Gin context.
//   - status: HTTP status to return.
//   - message: client facing summary.
//   - err: underlying cause, may be nil.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}

// ErrorHandler turns errors attached with c.Error into a JSON 500 response
// when the handler did not write a response itself.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	last := c.Errors.Last()
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Err(last.Err).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal server error", last.Err))
}
