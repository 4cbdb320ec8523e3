package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
)

type BookingInput struct {
	TripID             uint     `json:"trip_id" binding:"required"`
	SeatNumber         int      `json:"seat_number" binding:"required,gt=0"`
	PickupLocationLat  *float64 `json:"pickup_location_lat" binding:"omitempty,min=-90,max=90"`
	PickupLocationLng  *float64 `json:"pickup_location_lng" binding:"omitempty,min=-180,max=180"`
	DropoffLocationLat *float64 `json:"dropoff_location_lat" binding:"omitempty,min=-90,max=90"`
	DropoffLocationLng *float64 `json:"dropoff_location_lng" binding:"omitempty,min=-180,max=180"`
}

// LatLng is a bare coordinate pair.
type LatLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// UnmarshalJSON also takes pickup and dropoff as nested {lat, lng} objects.
func (in *BookingInput) UnmarshalJSON(b []byte) error {
	type plain BookingInput
	var wire struct {
		plain
		PickupLocation  *LatLng `json:"pickup_location"`
		DropoffLocation *LatLng `json:"dropoff_location"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*in = BookingInput(wire.plain)
	if p := wire.PickupLocation; p != nil {
		if in.PickupLocationLat == nil {
			in.PickupLocationLat = p.Lat
		}
		if in.PickupLocationLng == nil {
			in.PickupLocationLng = p.Lng
		}
	}
	if d := wire.DropoffLocation; d != nil {
		if in.DropoffLocationLat == nil {
			in.DropoffLocationLat = d.Lat
		}
		if in.DropoffLocationLng == nil {
			in.DropoffLocationLng = d.Lng
		}
	}
	return nil
}

type BookingView struct {
	models.Booking
	DepartureTime     *time.Time        `json:"departure_time,omitempty"`
	ArrivalTime       *time.Time        `json:"arrival_time,omitempty"`
	TripStatus        models.TripStatus `json:"trip_status,omitempty"`
	RouteName         string            `json:"route_name,omitempty"`
	StartLocationName string            `json:"start_location_name,omitempty"`
	EndLocationName   string            `json:"end_location_name,omitempty"`
	PlateNumber       string            `json:"plate_number,omitempty"`
	PassengerName     string            `json:"passenger_name,omitempty"`
}

func bookingView(b models.Booking) BookingView {
	view := BookingView{Booking: b, PassengerName: nameOf(b.Passenger)}
	if t := b.Trip; t != nil {
		departure, arrival := t.DepartureTime, t.ArrivalTime
		view.DepartureTime = &departure
		view.ArrivalTime = &arrival
		view.TripStatus = t.Status
		if t.Route != nil {
			view.RouteName = t.Route.RouteName
			view.StartLocationName = t.Route.StartLocationName
			view.EndLocationName = t.Route.EndLocationName
		}
		if t.Vehicle != nil {
			view.PlateNumber = t.Vehicle.PlateNumber
		}
	}
	return view
}

type BookingService struct {
	store repository.Store
	now   func() time.Time
}

func NewBookingService(store repository.Store) *BookingService {
	return &BookingService{store: store, now: utcNow}
}

// Create reserves one seat. The seat check, the counter decrement and the
// insert commit together or not at all; the partial unique index on live
// seats catches a concurrent writer that slipped past the check.
func (s *BookingService) Create(ctx context.Context, p models.Principal, in BookingInput) (*BookingView, error) {
	if p.Role != models.RolePassenger {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}

	var booking models.Booking
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		trip, err := tx.Trips().LockByID(ctx, in.TripID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTripNotFound
		}
		if err != nil {
			return err
		}
		if trip.Status != models.TripScheduled {
			return ErrTripNotBookable
		}

		vehicle, err := tx.Vehicles().ByID(ctx, trip.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle of trip %d: %w", trip.ID, err)
		}
		if in.SeatNumber > vehicle.Capacity {
			return Invalid(fmt.Sprintf("seat_number must be between 1 and %d", vehicle.Capacity))
		}

		taken, err := tx.Bookings().SeatTaken(ctx, trip.ID, in.SeatNumber)
		if err != nil {
			return err
		}
		if taken {
			return ErrSeatAlreadyBooked
		}

		ok, err := tx.Trips().TakeSeat(ctx, trip.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoSeatsAvailable
		}

		booking = models.Booking{
			TripID:             trip.ID,
			PassengerID:        p.ID,
			SeatNumber:         in.SeatNumber,
			BookingDate:        s.now().UTC(),
			Status:             models.BookingConfirmed,
			TotalAmount:        trip.Fare,
			PickupLocationLat:  in.PickupLocationLat,
			PickupLocationLng:  in.PickupLocationLng,
			DropoffLocationLat: in.DropoffLocationLat,
			DropoffLocationLng: in.DropoffLocationLng,
		}
		if err := tx.Bookings().Create(ctx, &booking); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrSeatAlreadyBooked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"trip_id":      booking.TripID,
		"seat":         booking.SeatNumber,
		"passenger_id": p.ID,
	}).Info("seat booked")
	return s.view(ctx, booking.ID)
}

// Cancel releases the seat of a live booking owned by p.
func (s *BookingService) Cancel(ctx context.Context, p models.Principal, id uint) (*BookingView, error) {
	if p.Role != models.RolePassenger {
		return nil, ErrForbidden
	}

	var tripID uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		booking, err := tx.Bookings().ByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFoundOrNotOwner
		}
		if err != nil {
			return err
		}
		if booking.PassengerID != p.ID {
			return ErrNotFoundOrNotOwner
		}
		if booking.Status == models.BookingCancelled {
			return ErrAlreadyCancelled
		}

		changed, err := tx.Bookings().Cancel(ctx, id, s.now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			return ErrAlreadyCancelled
		}
		tripID = booking.TripID
		return tx.Trips().ReleaseSeat(ctx, booking.TripID)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":   id,
		"trip_id":      tripID,
		"passenger_id": p.ID,
	}).Info("booking cancelled")
	return s.view(ctx, id)
}

// List returns the bookings visible to p, newest first: passengers see
// their own, drivers those on trips they drive, admins all of them.
func (s *BookingService) List(ctx context.Context, p models.Principal, tripID *uint) ([]BookingView, error) {
	filter := repository.BookingFilter{TripID: tripID}
	switch {
	case p.IsAdmin():
	case p.IsDriver():
		filter.DriverID = &p.ID
	default:
		filter.PassengerID = &p.ID
	}

	bookings, err := s.store.Bookings().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, bookingView(b))
	}
	return views, nil
}

// ForTrip lists every booking of one trip for its driver or an admin.
func (s *BookingService) ForTrip(ctx context.Context, p models.Principal, tripID uint) ([]BookingView, error) {
	if !p.IsDriver() && !p.IsAdmin() {
		return nil, ErrForbidden
	}
	trip, err := s.store.Trips().ByID(ctx, tripID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.IsDriver() && trip.DriverID != p.ID {
		return nil, ErrForbidden
	}

	bookings, err := s.store.Bookings().List(ctx, repository.BookingFilter{TripID: &tripID})
	if err != nil {
		return nil, err
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, bookingView(b))
	}
	return views, nil
}

func (s *BookingService) view(ctx context.Context, id uint) (*BookingView, error) {
	booking, err := s.store.Bookings().ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFoundOrNotOwner
	}
	if err != nil {
		return nil, err
	}
	view := bookingView(*booking)
	return &view, nil
}
