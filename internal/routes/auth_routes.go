package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

func AuthRoutes(r *gin.Engine, d Deps, auth gin.HandlerFunc) {
	users := d.Services.Users
	r.POST("/register", controllers.Register(users))
	r.POST("/login", controllers.Login(users, d.Tokens))

	profile := r.Group("/profile")
	profile.Use(auth)
	{
		profile.GET("", controllers.GetProfile(users))
		profile.PUT("", controllers.UpdateProfile(users))
		profile.POST("/image", controllers.UploadProfileImage(users, d.Images))
	}
}
