package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_tracker/internal/models"
)

// VehicleFilter narrows List. Nil fields do not filter.
type VehicleFilter struct {
	DriverID       *uint
	ProposedBy     *uint
	ApprovalStatus *models.ApprovalStatus
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	ByID(ctx context.Context, id uint) (*models.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter) ([]models.Vehicle, error)
	// Approve flips a pending vehicle to approved and assigns it to its
	// proposer. It reports false when no pending vehicle has that id.
	Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error)
	Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (bool, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id uint) (bool, error)
	SetImage(ctx context.Context, id uint, path string) error
}

type vehicleRepo struct {
	db *gorm.DB
}

func (r *vehicleRepo) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Driver").Preload("ProposedBy").Preload("ApprovedBy")
}

func (r *vehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(vehicle).Error)
}

func (r *vehicleRepo) ByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.withUsers(ctx).First(&vehicle, id).Error; err != nil {
		return nil, translate(err)
	}
	return &vehicle, nil
}

func (r *vehicleRepo) List(ctx context.Context, filter VehicleFilter) ([]models.Vehicle, error) {
	q := r.withUsers(ctx)
	if filter.DriverID != nil {
		q = q.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.ProposedBy != nil {
		q = q.Where("proposed_by_driver_id = ?", *filter.ProposedBy)
	}
	if filter.ApprovalStatus != nil {
		q = q.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	var vehicles []models.Vehicle
	err := q.Order("id ASC").Find(&vehicles).Error
	return vehicles, translate(err)
}

func (r *vehicleRepo) Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("id = ? AND approval_status = ?", id, models.ApprovalPending).
		Updates(map[string]any{
			"approved":             true,
			"approval_status":      models.ApprovalApproved,
			"driver_id":            gorm.Expr("proposed_by_driver_id"),
			"approved_at":          at,
			"approved_by_admin_id": adminID,
		}))
}

func (r *vehicleRepo) Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("id = ? AND approval_status = ?", id, models.ApprovalPending).
		Updates(map[string]any{
			"approval_status":      models.ApprovalRejected,
			"rejected_at":          at,
			"rejected_by_admin_id": adminID,
			"rejection_reason":     reason,
		}))
}

func (r *vehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	changed, err := affected(r.db.WithContext(ctx).Model(vehicle).
		Omit(clause.Associations).
		Select("plate_number", "make", "model", "year", "capacity", "status", "driver_id").
		Updates(vehicle))
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}

func (r *vehicleRepo) Delete(ctx context.Context, id uint) (bool, error) {
	return affected(r.db.WithContext(ctx).Delete(&models.Vehicle{}, id))
}

func (r *vehicleRepo) SetImage(ctx context.Context, id uint, path string) error {
	changed, err := affected(r.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("id = ?", id).Update("image_path", path))
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}
