package models

import "time"

type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleMaintenance, VehicleInactive:
		return true
	}
	return false
}

// Vehicle is proposed by a driver and only gets a DriverID once an admin
// approves it.
type Vehicle struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	PlateNumber string        `gorm:"uniqueIndex;not null" json:"plate_number"`
	Make        string        `gorm:"not null" json:"make"`
	Model       string        `gorm:"not null" json:"model"`
	Year        int           `gorm:"not null" json:"year"`
	Capacity    int           `gorm:"not null" json:"capacity"`
	Status      VehicleStatus `gorm:"type:varchar(16);not null;default:active" json:"status"`
	ImagePath   string        `json:"image_path,omitempty"`

	DriverID           *uint `gorm:"index" json:"driver_id"`
	ProposedByDriverID uint  `gorm:"index;not null" json:"proposed_by_driver_id"`

	Approved          bool           `gorm:"not null;default:false" json:"approved"`
	ApprovalStatus    ApprovalStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"approval_status"`
	ApprovedAt        *time.Time     `json:"approved_at"`
	ApprovedByAdminID *uint          `json:"approved_by_admin_id"`
	RejectedAt        *time.Time     `json:"rejected_at,omitempty"`
	RejectedByAdminID *uint          `json:"rejected_by_admin_id,omitempty"`
	RejectionReason   string         `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Driver     *User `gorm:"foreignKey:DriverID" json:"-"`
	ProposedBy *User `gorm:"foreignKey:ProposedByDriverID" json:"-"`
	ApprovedBy *User `gorm:"foreignKey:ApprovedByAdminID" json:"-"`
}
