package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_tracker/internal/models"
)

type BookingFilter struct {
	PassengerID *uint
	// DriverID keeps bookings on trips driven by this user.
	DriverID *uint
	TripID   *uint
}

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	ByID(ctx context.Context, id uint) (*models.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// SeatTaken reports whether a non-cancelled booking holds the seat.
	SeatTaken(ctx context.Context, tripID uint, seat int) (bool, error)
	TakenSeats(ctx context.Context, tripID uint) ([]int, error)
	// Cancel marks a live booking cancelled. It reports false when the
	// booking was already cancelled or does not exist.
	Cancel(ctx context.Context, id uint, at time.Time) (bool, error)
}

type bookingRepo struct {
	db *gorm.DB
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error)
}

func (r *bookingRepo) ByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Trip.Route").Preload("Trip.Vehicle").Preload("Passenger").
		First(&booking, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *bookingRepo) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("Trip.Route").Preload("Trip.Vehicle").Preload("Passenger")
	if filter.PassengerID != nil {
		q = q.Where("bookings.passenger_id = ?", *filter.PassengerID)
	}
	if filter.TripID != nil {
		q = q.Where("bookings.trip_id = ?", *filter.TripID)
	}
	if filter.DriverID != nil {
		q = q.Joins("JOIN trips ON trips.id = bookings.trip_id").
			Where("trips.driver_id = ?", *filter.DriverID)
	}
	var bookings []models.Booking
	err := q.Order("bookings.booking_date DESC").Order("bookings.id DESC").Find(&bookings).Error
	return bookings, translate(err)
}

func (r *bookingRepo) SeatTaken(ctx context.Context, tripID uint, seat int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("trip_id = ? AND seat_number = ? AND status <> ?", tripID, seat, models.BookingCancelled).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *bookingRepo) TakenSeats(ctx context.Context, tripID uint) ([]int, error) {
	var seats []int
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("trip_id = ? AND status <> ?", tripID, models.BookingCancelled).
		Order("seat_number ASC").
		Pluck("seat_number", &seats).Error
	return seats, translate(err)
}

func (r *bookingRepo) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	return affected(r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status <> ?", id, models.BookingCancelled).
		Updates(map[string]any{
			"status":       models.BookingCancelled,
			"cancelled_at": at,
		}))
}
