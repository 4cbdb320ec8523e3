package models

import "time"

type TripStatus string

const (
	TripScheduled TripStatus = "scheduled"
	TripOnRoute   TripStatus = "on_route"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripScheduled, TripOnRoute, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Trip is one scheduled run of a vehicle over an approved route.
// AvailableSeats is the live counter; TotalSeats keeps the value it was
// created with so the counter can be audited against bookings.
type Trip struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	RouteID        uint       `gorm:"index;not null" json:"route_id"`
	VehicleID      uint       `gorm:"index;not null" json:"vehicle_id"`
	DriverID       uint       `gorm:"index;not null" json:"driver_id"`
	DepartureTime  time.Time  `gorm:"not null;index" json:"departure_time"`
	ArrivalTime    time.Time  `gorm:"not null" json:"arrival_time"`
	Status         TripStatus `gorm:"type:varchar(16);not null;default:scheduled;index" json:"status"`
	Fare           float64    `gorm:"not null" json:"fare"`
	AvailableSeats int        `gorm:"not null" json:"available_seats"`
	TotalSeats     int        `gorm:"not null" json:"total_seats"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Route   *Route   `gorm:"foreignKey:RouteID" json:"-"`
	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
	Driver  *User    `gorm:"foreignKey:DriverID" json:"-"`
}
