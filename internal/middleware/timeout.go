package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/userapi/internal/pkg"
)

// Timeout bounds each request to d. Downstream handlers run against a
// buffered writer; when d elapses first the client receives a 408 envelope
// immediately and whatever the handler writes later is discarded.
// A non-positive d disables the middleware.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return ginx.NewChain().
		WithErrorFormat(errorEnvelope).
		Use(ginx.Timeout(ginx.WithTimeout(d))).
		Build()
}

// errorEnvelope renders ginx middleware errors in the API's response shape.
func errorEnvelope(status int, message string) any {
	return pkg.Response{Code: status, Message: message, Data: nil}
}
