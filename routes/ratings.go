package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
	"servicelink-server/models"
)

// RegisterRatingRoutes registers rating routes
func RegisterRatingRoutes(router *gin.RouterGroup) {
	ratings := router.Group("/ratings")
	ratings.Use(middleware.AuthMiddleware())
	{
		ratings.POST("", submitRating)
		ratings.GET("/pending", getPendingRatings)
		ratings.GET("/user/:id", getUserRatings)
		ratings.GET("/user/:id/stats", getUserRatingStats)
	}
}

func submitRating(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.RatingCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := ratingService.Submit(user, req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rating submitted successfully",
		"rating":  rating,
	})
}

func getPendingRatings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	pending, err := ratingService.PendingFor(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_ratings": pending})
}

func getUserRatings(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ratings, svcErr := ratingService.ReceivedBy(uint(id))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func getUserRatingStats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	stats, svcErr := ratingService.StatsFor(uint(id))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
