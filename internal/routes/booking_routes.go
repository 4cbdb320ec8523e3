package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
)

func BookingRoutes(r *gin.Engine, d Deps, auth gin.HandlerFunc) {
	bookings := d.Services.Bookings
	passengers := middleware.RequireRole(models.RolePassenger)

	booking := r.Group("/bookings")
	booking.Use(auth)
	{
		booking.GET("", controllers.ListBookings(bookings))
		booking.GET("/trip/:id",
			middleware.RequireRole(models.RoleDriver, models.RoleAdmin),
			controllers.TripBookings(bookings))
		booking.POST("", passengers, controllers.CreateBooking(bookings))
		booking.PUT("/:id/cancel", passengers, controllers.CancelBooking(bookings))
	}
}
