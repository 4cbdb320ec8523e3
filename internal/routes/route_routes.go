package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
)

func RouteRoutes(r *gin.Engine, d Deps, auth gin.HandlerFunc) {
	routes := d.Services.Routes
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	route := r.Group("/routes")
	route.Use(auth)
	{
		route.GET("", controllers.ListRoutes(routes))
		route.GET("/:id", controllers.GetRoute(routes))
		route.POST("", middleware.RequireRole(models.RoleDriver), controllers.ProposeRoute(routes))
		route.PUT("/:id/approve", adminOnly, controllers.ApproveRoute(routes))
		route.PUT("/:id/reject", adminOnly, controllers.RejectRoute(routes))
	}
}
