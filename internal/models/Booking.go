package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingPending   BookingStatus = "pending"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking reserves one seat on a trip. At most one non-cancelled booking
// may exist per (TripID, SeatNumber); the store enforces it with a partial
// unique index created at migration time.
type Booking struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	TripID             uint          `gorm:"not null;index" json:"trip_id"`
	PassengerID        uint          `gorm:"not null;index" json:"passenger_id"`
	SeatNumber         int           `gorm:"not null" json:"seat_number"`
	BookingDate        time.Time     `gorm:"not null" json:"booking_date"`
	Status             BookingStatus `gorm:"type:varchar(16);not null;default:confirmed" json:"status"`
	TotalAmount        float64       `gorm:"not null" json:"total_amount"`
	PickupLocationLat  *float64      `json:"pickup_location_lat"`
	PickupLocationLng  *float64      `json:"pickup_location_lng"`
	DropoffLocationLat *float64      `json:"dropoff_location_lat"`
	DropoffLocationLng *float64      `json:"dropoff_location_lng"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`

	Trip      *Trip `gorm:"foreignKey:TripID" json:"-"`
	Passenger *User `gorm:"foreignKey:PassengerID" json:"-"`
}
