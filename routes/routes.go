package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servicelink-server/config"
	"servicelink-server/middleware"
	"servicelink-server/services"
	ws "servicelink-server/websocket"
)

var (
	authService         *services.AuthService
	userService         *services.UserService
	catalogService      *services.CatalogService
	favoriteService     *services.FavoriteService
	requestService      *services.RequestService
	bookingService      *services.BookingService
	paymentService      *services.PaymentService
	ratingService       *services.RatingService
	chatService         *services.ChatService
	notificationService *services.NotificationService

	hub        *ws.Hub
	dispatcher *ws.Dispatcher
)

// Register wires the services and registers all API routes
func Register(router *gin.Engine, db *gorm.DB, h *ws.Hub, d *ws.Dispatcher) {
	hub = h
	dispatcher = d

	authService = services.NewAuthService(db)
	userService = services.NewUserService(db)
	catalogService = services.NewCatalogService(db)
	favoriteService = services.NewFavoriteService(db)
	requestService = services.NewRequestService(db, d, config.AppConfig.Geo.RequestRadiusKm)
	bookingService = services.NewBookingService(db, d)
	paymentService = services.NewPaymentService(db, d)
	ratingService = services.NewRatingService(db, d)
	chatService = services.NewChatService(db, d)
	notificationService = services.NewNotificationService(db)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ServiceLink server is running",
			"time":    time.Now().UTC(),
		})
	})

	// WebSocket endpoint (token in query parameters)
	router.GET("/api/v1/ws", middleware.WebSocketAuthMiddleware(), handleWebSocket)

	api := router.Group("/api/v1")
	{
		RegisterAuthRoutes(api)
		RegisterUserRoutes(api)
		RegisterServiceRoutes(api)
		RegisterFavoriteRoutes(api)
		RegisterRequestRoutes(api)
		RegisterBookingRoutes(api)
		RegisterPaymentRoutes(api)
		RegisterNotificationRoutes(api)
		RegisterChatRoutes(api)
		RegisterRatingRoutes(api)
	}
}

func handleWebSocket(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	ws.ServeWebSocket(hub, dispatcher, c.Writer, c.Request, *user)
}

// fail writes an operation failure using its classified status
func fail(c *gin.Context, err error) {
	c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
}
