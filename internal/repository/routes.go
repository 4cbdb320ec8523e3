package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_tracker/internal/models"
)

type RouteFilter struct {
	ProposedBy     *uint
	ApprovalStatus *models.ApprovalStatus
}

type RouteRepository interface {
	Create(ctx context.Context, route *models.Route) error
	ByID(ctx context.Context, id uint) (*models.Route, error)
	List(ctx context.Context, filter RouteFilter) ([]models.Route, error)
	Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error)
	Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (bool, error)
}

type routeRepo struct {
	db *gorm.DB
}

func (r *routeRepo) Create(ctx context.Context, route *models.Route) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(route).Error)
}

func (r *routeRepo) ByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	err := r.db.WithContext(ctx).Preload("ProposedBy").Preload("ApprovedBy").First(&route, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &route, nil
}

func (r *routeRepo) List(ctx context.Context, filter RouteFilter) ([]models.Route, error) {
	q := r.db.WithContext(ctx).Preload("ProposedBy").Preload("ApprovedBy")
	if filter.ProposedBy != nil {
		q = q.Where("proposed_by_driver_id = ?", *filter.ProposedBy)
	}
	if filter.ApprovalStatus != nil {
		q = q.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	var routes []models.Route
	err := q.Order("id ASC").Find(&routes).Error
	return routes, translate(err)
}

func (r *routeRepo) Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Route{}).
		Where("id = ? AND approval_status = ?", id, models.ApprovalPending).
		Updates(map[string]any{
			"approved":             true,
			"approval_status":      models.ApprovalApproved,
			"approved_at":          at,
			"approved_by_admin_id": adminID,
		}))
}

func (r *routeRepo) Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Route{}).
		Where("id = ? AND approval_status = ?", id, models.ApprovalPending).
		Updates(map[string]any{
			"approval_status":      models.ApprovalRejected,
			"rejected_at":          at,
			"rejected_by_admin_id": adminID,
			"rejection_reason":     reason,
		}))
}
