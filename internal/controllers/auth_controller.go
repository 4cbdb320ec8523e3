package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/middleware"
	"bus_tracker/internal/services"
)

func Register(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if !bindJSON(c, &input) {
			return
		}
		user, err := users.Register(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

func Login(users *services.UserService, tokens *middleware.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if !bindJSON(c, &input) {
			return
		}
		user, err := users.Authenticate(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := tokens.Issue(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user": gin.H{
				"id":         user.ID,
				"name":       user.UserName,
				"email":      user.Email,
				"role":       user.Role,
				"image_path": user.ImagePath,
			},
		})
	}
}

func GetProfile(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Profile(c.Request.Context(), principal(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func UpdateProfile(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ProfileInput
		if !bindJSON(c, &input) {
			return
		}
		user, err := users.UpdateProfile(c.Request.Context(), principal(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
	}
}

// ListUsers is admin only.
func ListUsers(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.List(c.Request.Context(), principal(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
