package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
	"servicelink-server/models"
)

// RegisterChatRoutes registers conversation routes
func RegisterChatRoutes(router *gin.RouterGroup) {
	chat := router.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.GET("/conversations", getConversations)
		chat.GET("/conversations/:id/messages", getConversationMessages)
		chat.POST("/messages", sendChatMessage)
	}
}

func getConversations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	// Live unread flags come from the websocket session when one is attached
	var hasUnread func(string) bool
	if session, ok := dispatcher.Session(user.ID); ok {
		hasUnread = session.HasUnreadChat
	}

	conversations, err := chatService.ListConversations(user, hasUnread)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func getConversationMessages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	messages, err := chatService.History(user, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func sendChatMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.ChatSend
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := chatService.Send(user, req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent",
		"data":    message,
	})
}
