package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/controllers"
	"github.com/sejuk-service/aircond-service-api/middleware"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Sejuk Service API server...")

	// Load configuration; a missing DATABASE_URL aborts startup since no
	// data operation can work without it
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Technician{}, &models.Order{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize S3 for evidence file storage; the API still works without
	// it, uploads just report storage as unconfigured
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		log.Println("S3 service initialized")
	} else {
		log.Println("AWS_S3_BUCKET not set, file uploads disabled")
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		protected := v1.Group("")
		protected.Use(middleware.EnsureValidToken(cfg))
		{
			// Accounts
			protected.POST("/users", controllers.CreateUser)
			protected.GET("/users/me", controllers.GetMyProfile)
			protected.PUT("/users/me", controllers.UpdateMyProfile)

			// Orders
			protected.POST("/orders", controllers.CreateOrder)
			protected.GET("/orders", controllers.ListOrders)
			protected.GET("/orders/my", controllers.ListMyJobs)
			protected.GET("/orders/:id", controllers.GetOrder)
			protected.PUT("/orders/:id", controllers.UpdateOrder)
			protected.DELETE("/orders/:id", controllers.DeleteOrder)
			protected.POST("/orders/:id/complete", controllers.CompleteOrder)
			protected.POST("/orders/:id/rework", controllers.MarkForRework)
			protected.POST("/orders/:id/files", controllers.UploadJobFiles)
			protected.GET("/orders/:id/notification", controllers.GetOrderNotification)

			// Technician directory
			protected.POST("/technicians", controllers.CreateTechnician)
			protected.GET("/technicians", controllers.ListTechnicians)
			protected.GET("/technicians/:id", controllers.GetTechnician)
			protected.PUT("/technicians/:id", controllers.UpdateTechnician)
			protected.DELETE("/technicians/:id", controllers.DeleteTechnician)

			// KPIs
			protected.GET("/kpis/technicians", controllers.GetTechnicianKPIs)
			protected.GET("/kpis/weekly", controllers.GetWeeklyMetrics)
			protected.GET("/kpis/monthly", controllers.GetMonthlyTrends)
		}
	}

	// Live order feed for the dashboards
	router.GET("/ws/orders", controllers.OrdersFeed)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sejuk Service API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
