package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/controllers"
	"github.com/warsztat/workshop-api/middleware"
)

// setupRouter builds the API. authenticate validates the bearer token and
// resolve maps it onto a local client or employee.
func setupRouter(cfg *config.Config, lg *zap.Logger, authenticate, resolve gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(lg))
	router.Use(middleware.RequestLogger(lg.Named("http")))
	router.Use(cors.New(corsConfig(cfg)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/services", controllers.ListServices)

		// registration runs before a local account exists
		v1.POST("/clients", authenticate, controllers.RegisterClient)
	}

	api := v1.Group("", authenticate, resolve)
	{
		api.GET("/clients/me", controllers.GetMyProfile)
		api.PUT("/clients/me", controllers.UpdateMyProfile)
		api.DELETE("/clients/me", controllers.DeleteMyAccount)

		api.GET("/vehicles", controllers.ListVehicles)
		api.POST("/vehicles", controllers.AddVehicle)
		api.PUT("/vehicles/:id", controllers.UpdateVehicle)
		api.DELETE("/vehicles/:id", controllers.DeleteVehicle)

		api.GET("/reservations/init", controllers.GetReservationInit)
		api.GET("/reservations/occupied-slots", controllers.GetOccupiedSlots)
		api.POST("/reservations/finalize", controllers.FinalizeReservation)
		api.GET("/reservations/client", controllers.GetClientReservations)
		api.GET("/reservations/:id", controllers.GetReservation)
		api.DELETE("/reservations/:id", controllers.DeleteReservation)

		api.GET("/orders/:id/parts", controllers.ListParts)
		api.GET("/orders/:id/protocol", controllers.GetProtocol)
	}

	staff := api.Group("", middleware.RequireScope(cfg.Auth0StaffScope))
	{
		staff.GET("/orders", controllers.GetAllOrders)
		staff.GET("/orders/pending", controllers.GetPendingOrders)
		staff.GET("/orders/schedule", controllers.GetSchedule)
		staff.GET("/orders/history", controllers.GetHistory)
		staff.PATCH("/orders/:id", controllers.UpdateOrder)
		staff.POST("/orders/:id/assign", controllers.AssignEmployee)
		staff.POST("/orders/:id/complete", controllers.CompleteOrder)
		staff.POST("/orders/:id/mark-paid", controllers.MarkOrderPaid)

		staff.POST("/orders/:id/parts", controllers.AddPart)
		staff.PUT("/orders/:id/parts/:partId", controllers.UpdatePart)
		staff.DELETE("/orders/:id/parts/:partId", controllers.DeletePart)

		staff.POST("/orders/:id/protocol/description", controllers.SetProtocolDescription)
		staff.POST("/orders/:id/protocol/photos", controllers.AddProtocolPhoto)
		staff.POST("/orders/:id/protocol/document", controllers.GenerateProtocolDocument)

		staff.GET("/employees/available", controllers.GetAvailableEmployees)
		staff.GET("/employees/:id/reservations", controllers.GetEmployeeReservations)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.CORSOrigins
	c.AllowCredentials = true
	return c
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Workshop API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not connected",
			},
		})
		return
	}

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

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	query := "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename"
	if db.Dialector.Name() == "sqlite" {
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}

	var tables []string
	if err := db.Raw(query).Scan(&tables).Error; err != nil {
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
