package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/userapi/internal/pkg"
)

// renderError aborts with the JSON envelope for errors produced by the engine
// itself rather than by a handler: unknown paths and unbound methods.
func renderError(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, pkg.Response{
		Code:    code,
		Message: statusMessage(code),
		Data:    nil,
	})
}

// statusMessage returns the lower-case message used in error envelopes.
func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return strings.ToLower(text)
	}
	return "error"
}
