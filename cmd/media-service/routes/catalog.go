package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/halcyonweb/mediakit/internal/catalog"
)

// CatalogRoutes wires the cached read endpoints the site renders from
func CatalogRoutes(api *gin.RouterGroup, services *catalog.Services, gallery *catalog.Gallery) {
	api.GET("/services", handleListServices(services))
	api.GET("/projects/:id/images", handleProjectImages(gallery))
}

func handleListServices(services *catalog.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := services.List(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to list services")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load services"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "services": list})
	}
}

func handleProjectImages(gallery *catalog.Gallery) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := gallery.ProjectImages(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"thumbnail": result.Thumbnail,
			"images":    result.Images,
		})
	}
}
