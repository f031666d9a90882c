package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
)

// RegisterFavoriteRoutes registers favorite listing routes
func RegisterFavoriteRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	favorites.Use(middleware.AuthMiddleware())
	{
		favorites.GET("", getFavorites)
		favorites.POST("/:id/toggle", toggleFavorite)
	}
}

func toggleFavorite(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	isFavorite, svcErr := favoriteService.Toggle(user, uint(id))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": isFavorite})
}

func getFavorites(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	services, err := favoriteService.ListForUser(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}
