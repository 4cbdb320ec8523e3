package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
)

func TripRoutes(r *gin.Engine, d Deps, auth gin.HandlerFunc) {
	trips := d.Services.Trips
	operators := middleware.RequireRole(models.RoleDriver, models.RoleAdmin)

	trip := r.Group("/trips")
	trip.Use(auth)
	{
		trip.GET("", controllers.ListTrips(trips))
		trip.POST("", operators, controllers.CreateTrip(trips))
		trip.PUT("/:id/status", operators, controllers.UpdateTripStatus(trips))
		trip.POST("/:id/location", middleware.RequireRole(models.RoleDriver), controllers.RecordLocation(trips))
		trip.GET("/:id/locations", controllers.TripLocations(trips))
		trip.GET("/:id/seats", controllers.TripSeats(trips))
	}
}
