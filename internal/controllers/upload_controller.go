package controllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/services"
	"bus_tracker/internal/storage"
)

const imageField = "image"

func storageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrNotImage):
		return services.Invalid(err.Error())
	}
	return err
}

func UploadVehicleImage(vehicles *services.VehicleService, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		p := principal(c)
		if err := vehicles.Authorize(c.Request.Context(), p, id); err != nil {
			respondError(c, err)
			return
		}
		file, err := c.FormFile(imageField)
		if err != nil {
			respondError(c, services.Invalid("image file is required"))
			return
		}
		url, err := images.Save(c.Request.Context(), storage.KindVehicle, file)
		if err != nil {
			respondError(c, storageError(err))
			return
		}
		vehicle, err := vehicles.SetImage(c.Request.Context(), p, id, url)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image uploaded successfully", "image_path": url, "vehicle": vehicle})
	}
}

func UploadProfileImage(users *services.UserService, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile(imageField)
		if err != nil {
			respondError(c, services.Invalid("image file is required"))
			return
		}
		url, err := images.Save(c.Request.Context(), storage.KindDriver, file)
		if err != nil {
			respondError(c, storageError(err))
			return
		}
		user, err := users.SetImage(c.Request.Context(), principal(c), url)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image uploaded successfully", "image_path": url, "user": user})
	}
}

// ServeUpload streams a locally stored image. Paths escaping the upload
// directory are answered with 400.
func ServeUpload(local *storage.LocalStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		full, err := local.Resolve(c.Param("path"))
		switch {
		case errors.Is(err, storage.ErrInvalidPath):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "INVALID_PATH"})
			return
		case errors.Is(err, os.ErrNotExist):
			c.JSON(http.StatusNotFound, gin.H{"message": "file not found", "code": "NOT_FOUND"})
			return
		case err != nil:
			respondError(c, err)
			return
		}
		c.File(full)
	}
}
