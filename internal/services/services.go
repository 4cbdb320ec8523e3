// Package services holds the domain rules: who may do what, in which
// state, and how the seat ledger stays consistent. It only talks to the
// database through repository.Store.
package services

import (
	"time"

	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
)

// Services bundles one instance of every service over a shared store.
type Services struct {
	Users    *UserService
	Vehicles *VehicleService
	Routes   *RouteService
	Trips    *TripService
	Bookings *BookingService
}

func New(store repository.Store) *Services {
	return &Services{
		Users:    NewUserService(store),
		Vehicles: NewVehicleService(store),
		Routes:   NewRouteService(store),
		Trips:    NewTripService(store),
		Bookings: NewBookingService(store),
	}
}

// SetClock replaces the time source of every service.
func (s *Services) SetClock(now func() time.Time) {
	s.Vehicles.now = now
	s.Routes.now = now
	s.Trips.now = now
	s.Bookings.now = now
}

func utcNow() time.Time { return time.Now().UTC() }

func nameOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.UserName
}
