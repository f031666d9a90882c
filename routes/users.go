package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
)

// RegisterUserRoutes registers profile and platform routes
func RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/stats", getPlatformStats)

	users := router.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/:id", getUserProfile)
		users.PUT("/location", updateLocation)
		users.PUT("/payment", updatePaymentDetails)
	}
}

func getPlatformStats(c *gin.Context) {
	stats, err := userService.Stats()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func getUserProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, svcErr := userService.Get(uint(id))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func updateLocation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		Lat float64 `json:"lat" binding:"required"`
		Lng float64 `json:"lng" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := userService.UpdateLocation(user, req.Lat, req.Lng)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location updated successfully",
		"user":    updated,
	})
}

func updatePaymentDetails(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
		PaymentDetail string `json:"payment_detail" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := userService.UpdatePayment(user, req.PaymentMethod, req.PaymentDetail)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment details updated successfully",
		"user":    updated,
	})
}
