package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

// UploadRoutes serves locally stored images. S3-hosted images are fetched
// from the bucket directly.
func UploadRoutes(r *gin.Engine, d Deps) {
	if d.Local == nil {
		return
	}
	r.GET("/uploads/*path", controllers.ServeUpload(d.Local))
}
