package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Err translates err into an HTTP response and aborts the request. Response
// bodies stay empty; callers that want a payload write it themselves before
// returning nil.
func Err(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("request rejected")
	}

	c.AbortWithStatus(status)
}

// RecoveryMiddleware converts panics into empty 500 responses.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("recovered from panic")
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// ErrorHandlerMiddleware reports errors attached to the gin context by
// handlers that returned without writing a status.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		Err(c, c.Errors.Last().Err)
	}
}
