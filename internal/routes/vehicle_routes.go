package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
)

func VehicleRoutes(r *gin.Engine, d Deps, auth gin.HandlerFunc) {
	vehicles := d.Services.Vehicles
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	vehicle := r.Group("/vehicles")
	vehicle.Use(auth)
	{
		vehicle.GET("", controllers.ListVehicles(vehicles))
		vehicle.GET("/:id", controllers.GetVehicle(vehicles))
		vehicle.POST("", middleware.RequireRole(models.RoleDriver), controllers.ProposeVehicle(vehicles))
		vehicle.PUT("/:id/approve", adminOnly, controllers.ApproveVehicle(vehicles))
		vehicle.PUT("/:id/reject", adminOnly, controllers.RejectVehicle(vehicles))
		vehicle.PUT("/:id", adminOnly, controllers.UpdateVehicle(vehicles))
		vehicle.DELETE("/:id", adminOnly, controllers.DeleteVehicle(vehicles))
		vehicle.POST("/:id/image",
			middleware.RequireRole(models.RoleDriver, models.RoleAdmin),
			controllers.UploadVehicleImage(vehicles, d.Images))
	}
}
