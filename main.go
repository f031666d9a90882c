package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"servicelink-server/config"
	"servicelink-server/database"
	"servicelink-server/jobs"
	"servicelink-server/routes"
	"servicelink-server/services"
	ws "servicelink-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.RedirectTrailingSlash = false

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// The hub delivers over WebSocket; the dispatcher decides who hears what
	hub := ws.NewHub()
	dispatcher := ws.NewDispatcher(hub, config.AppConfig.Geo.RequestRadiusKm)
	hub.BindDispatcher(dispatcher)
	go hub.Run()
	go dispatcher.Run()

	// API routes
	routes.Register(router, database.DB, hub, dispatcher)

	// Background job closing expired requests
	expirationJob := jobs.NewExpirationJob(
		services.NewRequestService(database.DB, dispatcher, config.AppConfig.Geo.RequestRadiusKm))
	expirationJob.Start()
	defer expirationJob.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("🚀 ServiceLink server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
