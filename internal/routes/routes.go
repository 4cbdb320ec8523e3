package routes

import (
	"io"
	"os"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/services"
	"bus_tracker/internal/storage"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Services    *services.Services
	Tokens      *middleware.TokenManager
	Images      storage.ImageStore
	Local       *storage.LocalStore // nil when images live in S3
	CORSOrigins []string
	AccessLog   io.Writer
}

func SetupRouter(d Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(services.JSONFieldName)
	}

	accessLog := d.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(accessLog),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/health"}),
	))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/health", controllers.Health)

	auth := middleware.RequireAuth(d.Tokens)

	AuthRoutes(r, d, auth)
	AdminRoutes(r, d, auth)
	VehicleRoutes(r, d, auth)
	RouteRoutes(r, d, auth)
	TripRoutes(r, d, auth)
	BookingRoutes(r, d, auth)
	UploadRoutes(r, d)

	return r
}
