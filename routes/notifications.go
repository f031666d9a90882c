package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
)

// RegisterNotificationRoutes registers notification routes
func RegisterNotificationRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", getNotifications)
		notifications.PUT("/:id/read", markNotificationRead)
		notifications.PUT("/read-all", markAllNotificationsRead)
	}
}

func getNotifications(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notifications, err := notificationService.List(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func markNotificationRead(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	notification, svcErr := notificationService.MarkRead(user, uint(id))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}

	// Keep the live badge counts in step with the store
	dispatcher.MarkRead(user.ID, notification)

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

func markAllNotificationsRead(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := notificationService.MarkAllRead(user); err != nil {
		fail(c, err)
		return
	}
	dispatcher.MarkAllRead(user.ID)

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
