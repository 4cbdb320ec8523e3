package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
)

func AdminRoutes(r *gin.Engine, d Deps, auth gin.HandlerFunc) {
	admin := r.Group("/users")
	admin.Use(auth, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("", controllers.ListUsers(d.Services.Users))
	}
}
