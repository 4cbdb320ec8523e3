package models

import "time"

// Route is a driver-proposed path between two named points.
type Route struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	RouteName         string  `gorm:"not null" json:"route_name"`
	StartLocationName string  `gorm:"not null" json:"start_location_name"`
	StartLocationLat  float64 `gorm:"not null" json:"start_location_lat"`
	StartLocationLng  float64 `gorm:"not null" json:"start_location_lng"`
	EndLocationName   string  `gorm:"not null" json:"end_location_name"`
	EndLocationLat    float64 `gorm:"not null" json:"end_location_lat"`
	EndLocationLng    float64 `gorm:"not null" json:"end_location_lng"`
	Distance          float64 `gorm:"not null" json:"distance"`
	EstimatedTime     int     `gorm:"not null" json:"estimated_time"` // minutes

	// LINESTRING in WKB (SRID 4326); the API exposes it as GeoJSON.
	Geometry []byte `json:"-"`

	ProposedByDriverID uint `gorm:"index;not null" json:"proposed_by_driver_id"`

	Approved          bool           `gorm:"not null;default:false" json:"approved"`
	ApprovalStatus    ApprovalStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"approval_status"`
	ApprovedAt        *time.Time     `json:"approved_at"`
	ApprovedByAdminID *uint          `json:"approved_by_admin_id"`
	RejectedAt        *time.Time     `json:"rejected_at,omitempty"`
	RejectedByAdminID *uint          `json:"rejected_by_admin_id,omitempty"`
	RejectionReason   string         `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProposedBy *User `gorm:"foreignKey:ProposedByDriverID" json:"-"`
	ApprovedBy *User `gorm:"foreignKey:ApprovedByAdminID" json:"-"`
}
