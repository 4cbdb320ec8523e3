package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/services"
)

// ProposeVehicle submits a driver's vehicle for admin approval.
func ProposeVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.VehicleInput
		if !bindJSON(c, &input) {
			return
		}
		vehicle, err := vehicles.Propose(c.Request.Context(), principal(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":   "Vehicle request submitted successfully. Awaiting approval.",
			"vehicleId": vehicle.ID,
			"vehicle":   vehicle,
		})
	}
}

func ListVehicles(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := vehicles.List(c.Request.Context(), principal(c), approvalQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		vehicle, err := vehicles.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}

func ApproveVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		vehicle, err := vehicles.Approve(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vehicle request approved successfully", "vehicle": vehicle})
	}
}

func RejectVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input rejectInput
		if !bindOptionalJSON(c, &input) {
			return
		}
		vehicle, err := vehicles.Reject(c.Request.Context(), principal(c), id, input.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vehicle request rejected", "vehicle": vehicle})
	}
}

func UpdateVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input services.VehicleUpdate
		if !bindJSON(c, &input) {
			return
		}
		vehicle, err := vehicles.Update(c.Request.Context(), principal(c), id, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vehicle updated successfully", "vehicle": vehicle})
	}
}

func DeleteVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := vehicles.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
	}
}
