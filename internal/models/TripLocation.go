package models

import "time"

// TripLocation is one position ping. Rows are only ever appended; the
// current position of a trip is the row with the latest Timestamp.
type TripLocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TripID    uint      `gorm:"not null;index:idx_trip_locations_trip_ts,priority:1" json:"trip_id"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Timestamp time.Time `gorm:"not null;index:idx_trip_locations_trip_ts,priority:2" json:"timestamp"`

	Trip *Trip `gorm:"foreignKey:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
