package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_tracker/internal/models"
)

// TripFilter narrows List. BookableAfter restricts the result to scheduled
// trips on approved routes that depart after the given instant.
type TripFilter struct {
	DriverID      *uint
	BookableAfter *time.Time
}

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	ByID(ctx context.Context, id uint) (*models.Trip, error)
	// LockByID reads a trip for update inside a transaction. Dialects
	// without row locks serialise writers at the transaction level instead.
	LockByID(ctx context.Context, id uint) (*models.Trip, error)
	List(ctx context.Context, filter TripFilter) ([]models.Trip, error)
	SetStatus(ctx context.Context, id uint, status models.TripStatus) (bool, error)

	// TakeSeat decrements AvailableSeats if it is positive and reports
	// whether it did.
	TakeSeat(ctx context.Context, id uint) (bool, error)
	ReleaseSeat(ctx context.Context, id uint) error

	AppendLocation(ctx context.Context, loc *models.TripLocation) error
	// LatestLocations returns the newest ping of each trip that has one.
	LatestLocations(ctx context.Context, tripIDs []uint) (map[uint]models.TripLocation, error)
	Locations(ctx context.Context, tripID uint) ([]models.TripLocation, error)
}

type tripRepo struct {
	db *gorm.DB
}

func (r *tripRepo) Create(ctx context.Context, trip *models.Trip) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(trip).Error)
}

func (r *tripRepo) ByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Preload("Route").Preload("Vehicle").Preload("Driver").
		First(&trip, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (r *tripRepo) LockByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&trip, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (r *tripRepo) List(ctx context.Context, filter TripFilter) ([]models.Trip, error) {
	q := r.db.WithContext(ctx).Preload("Route").Preload("Vehicle").Preload("Driver")
	if filter.DriverID != nil {
		q = q.Where("trips.driver_id = ?", *filter.DriverID)
	}
	if filter.BookableAfter != nil {
		q = q.Joins("JOIN routes ON routes.id = trips.route_id").
			Where("trips.status = ?", models.TripScheduled).
			Where("trips.departure_time > ?", *filter.BookableAfter).
			Where("routes.approved = ?", true)
	}
	var trips []models.Trip
	err := q.Order("trips.departure_time ASC").Order("trips.id ASC").Find(&trips).Error
	return trips, translate(err)
}

func (r *tripRepo) SetStatus(ctx context.Context, id uint, status models.TripStatus) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ?", id).Update("status", status))
}

func (r *tripRepo) TakeSeat(ctx context.Context, id uint) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ? AND available_seats > 0", id).
		Update("available_seats", gorm.Expr("available_seats - 1")))
}

func (r *tripRepo) ReleaseSeat(ctx context.Context, id uint) error {
	changed, err := affected(r.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ?", id).
		Update("available_seats", gorm.Expr("available_seats + 1")))
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}

func (r *tripRepo) AppendLocation(ctx context.Context, loc *models.TripLocation) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(loc).Error)
}

func (r *tripRepo) LatestLocations(ctx context.Context, tripIDs []uint) (map[uint]models.TripLocation, error) {
	latest := make(map[uint]models.TripLocation, len(tripIDs))
	if len(tripIDs) == 0 {
		return latest, nil
	}

	var locs []models.TripLocation
	err := r.db.WithContext(ctx).
		Where("trip_locations.trip_id IN ?", tripIDs).
		Where(`trip_locations.id = (
			SELECT l2.id FROM trip_locations l2
			WHERE l2.trip_id = trip_locations.trip_id
			ORDER BY l2.timestamp DESC, l2.id DESC
			LIMIT 1)`).
		Find(&locs).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, loc := range locs {
		latest[loc.TripID] = loc
	}
	return latest, nil
}

func (r *tripRepo) Locations(ctx context.Context, tripID uint) ([]models.TripLocation, error) {
	var locs []models.TripLocation
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("timestamp ASC").Order("id ASC").
		Find(&locs).Error
	return locs, translate(err)
}
