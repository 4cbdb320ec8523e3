package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/services"
)

// ProposeRoute accepts an optional GeoJSON LineString in "geometry"; the
// response always carries the stored line as GeoJSON.
func ProposeRoute(routes *services.RouteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RouteInput
		if !bindJSON(c, &input) {
			return
		}
		route, err := routes.Propose(c.Request.Context(), principal(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Route proposal submitted successfully. Awaiting approval.",
			"routeId": route.ID,
			"route":   route,
		})
	}
}

func ListRoutes(routes *services.RouteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := routes.List(c.Request.Context(), principal(c), approvalQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetRoute(routes *services.RouteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		route, err := routes.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, route)
	}
}

func ApproveRoute(routes *services.RouteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		route, err := routes.Approve(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Route approved successfully", "route": route})
	}
}

func RejectRoute(routes *services.RouteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input rejectInput
		if !bindOptionalJSON(c, &input) {
			return
		}
		route, err := routes.Reject(c.Request.Context(), principal(c), id, input.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Route rejected", "route": route})
	}
}
