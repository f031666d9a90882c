package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicelink-server/middleware"
	"servicelink-server/models"
)

// RegisterRequestRoutes registers service request and offer routes
func RegisterRequestRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", createRequest)
		requests.GET("/nearby", getNearbyRequests)
		requests.GET("/mine", getMyRequests)
		requests.GET("/:id/offers", getRequestOffers)
		requests.POST("/offers", makeOffer)
		requests.POST("/:id/offers/:offerId/accept", acceptOffer)
	}
}

func createRequest(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.ServiceRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := requestService.PostRequest(user, req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Request posted successfully",
		"request": request,
	})
}

func getNearbyRequests(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	requests, err := requestService.NearbyRequests(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func getMyRequests(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	requests, err := requestService.MyRequests(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func getRequestOffers(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	offers, svcErr := requestService.OffersForRequest(uint(id))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func makeOffer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.OfferCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := requestService.MakeOffer(user, req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Offer sent successfully",
		"offer":   offer,
	})
}

func acceptOffer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}
	offerID, err := strconv.ParseUint(c.Param("offerId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer ID"})
		return
	}

	booking, svcErr := requestService.AcceptOffer(user, uint(offerID), uint(requestID))
	if svcErr != nil {
		fail(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Offer accepted successfully",
		"booking": booking,
	})
}
