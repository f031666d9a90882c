package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
	"servicelink-server/models"
)

// RegisterPaymentRoutes registers payment request routes
func RegisterPaymentRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("", createPaymentRequest)
		payments.GET("", getMyPayments)
		payments.POST("/:id/process", processPayment)
		payments.DELETE("/:id", cancelPaymentRequest)
		payments.GET("/revenue", getProviderRevenue)
	}
}

func createPaymentRequest(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.PaymentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := paymentService.CreateRequest(user, req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment request sent successfully",
		"payment": payment,
	})
}

func getMyPayments(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	payments, err := paymentService.ListForUser(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func processPayment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	// Transaction ID is optional; one is generated when absent
	var req models.PaymentProcess
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	payment, svcErr := paymentService.Process(user, uint(id), req)
	if svcErr != nil {
		fail(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment completed successfully",
		"payment": payment,
	})
}

func cancelPaymentRequest(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	if err := paymentService.Cancel(user, uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment request cancelled"})
}

func getProviderRevenue(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	if !user.IsProvider() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only providers have revenue"})
		return
	}

	total, err := paymentService.ProviderRevenue(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue": total})
}
