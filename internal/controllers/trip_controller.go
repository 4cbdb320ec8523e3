package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/models"
	"bus_tracker/internal/services"
)

type statusInput struct {
	Status models.TripStatus `json:"status" binding:"required"`
}

func CreateTrip(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.TripInput
		if !bindJSON(c, &input) {
			return
		}
		trip, err := trips.Create(c.Request.Context(), principal(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Trip created successfully", "tripId": trip.ID, "trip": trip})
	}
}

// ListTrips returns role-filtered trips with their current location.
func ListTrips(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := trips.List(c.Request.Context(), principal(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func UpdateTripStatus(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input statusInput
		if !bindJSON(c, &input) {
			return
		}
		trip, err := trips.UpdateStatus(c.Request.Context(), principal(c), id, input.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Trip status updated to " + string(trip.Status), "trip": trip})
	}
}

func RecordLocation(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input services.LocationInput
		if !bindJSON(c, &input) {
			return
		}
		loc, err := trips.RecordLocation(c.Request.Context(), principal(c), id, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Location updated successfully for trip",
			"tripId":   id,
			"location": loc,
		})
	}
}

func TripLocations(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		track, err := trips.Locations(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, track)
	}
}

func TripSeats(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		seats, err := trips.Seats(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, seats)
	}
}
