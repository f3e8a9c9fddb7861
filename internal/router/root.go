package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// serveRoot lists every registered prefix with the absolute URL of its
// collection route. Prefixes without a collection route are omitted.
func (r *Router) serveRoot(c *gin.Context) {
	base := requestOrigin(c.Request)
	out := make(map[string]string, len(r.registry))
	for _, reg := range r.registry {
		p, err := r.Reverse(qualify(reg.namespace, reg.basename+"-list"))
		if err != nil {
			continue
		}
		out[reg.prefix] = base + p
	}
	c.JSON(http.StatusOK, out)
}

// requestOrigin returns scheme://host for the request, honoring X-Forwarded-Proto.
func requestOrigin(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(req.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + req.Host
}
