package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/userapi/internal/router"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Router   *router.Router
	BasePath string
	Modules  []Module
	DB       *gorm.DB
}

// RegisterRoutes registers every module on deps.Router, mounts the generated
// routes under deps.BasePath and adds the health check and JSON fallbacks.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("engine is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if deps.Router == nil {
		return errors.New("router is nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		if err := m.Register(deps.Router.Namespace(m.AppName())); err != nil {
			return fmt.Errorf("register module %q: %w", m.AppName(), err)
		}
	}

	basePath := deps.BasePath
	if basePath == "" {
		basePath = "/"
	}
	deps.Router.Mount(r.Group(basePath))

	r.GET("/health", healthHandler(deps.DB))

	r.NoRoute(func(c *gin.Context) { renderError(c, http.StatusNotFound) })
	r.NoMethod(func(c *gin.Context) { renderError(c, http.StatusMethodNotAllowed) })

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := pingDatabase(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
