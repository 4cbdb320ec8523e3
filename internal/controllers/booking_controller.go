package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/services"
)

func CreateBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.BookingInput
		if !bindJSON(c, &input) {
			return
		}
		booking, err := bookings.Create(c.Request.Context(), principal(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":   "Booking confirmed successfully",
			"bookingId": booking.ID,
			"booking":   booking,
		})
	}
}

func CancelBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.Cancel(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "Booking cancelled successfully",
			"bookingId": id,
			"booking":   booking,
		})
	}
}

// ListBookings honours an optional ?trip_id= filter on top of the role rules.
func ListBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tripID *uint
		if raw := c.Query("trip_id"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || v == 0 {
				respondError(c, services.Invalid("trip_id must be a positive integer"))
				return
			}
			id := uint(v)
			tripID = &id
		}
		list, err := bookings.List(c.Request.Context(), principal(c), tripID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func TripBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		list, err := bookings.ForTrip(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
