// Package routes exposes the media service's HTTP API: staff login, the
// chunked upload pipeline, and the cached catalog reads.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyonweb/mediakit/cmd/media-service/middleware"
	"github.com/halcyonweb/mediakit/internal/auth"
	"github.com/halcyonweb/mediakit/internal/catalog"
	"github.com/halcyonweb/mediakit/internal/upload"
	"github.com/halcyonweb/mediakit/pkg/config"
)

// NewRouter builds the gin engine. Upload endpoints are staff-only, matching
// the admin back office that drives them.
func NewRouter(
	authService *auth.Service,
	uploadService *upload.Service,
	services *catalog.Services,
	gallery *catalog.Gallery,
	uploadCfg *config.UploadConfig,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	AuthRoutes(api, authService)
	CatalogRoutes(api, services, gallery)

	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware(authService), middleware.StaffOnly())
	UploadRoutes(staff, uploadService, uploadCfg)

	return router
}
