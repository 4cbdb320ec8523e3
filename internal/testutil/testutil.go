// Package testutil builds a migrated SQLite store and common fixtures for
// tests in other packages.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bus_tracker/internal/config"
	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
	"bus_tracker/internal/services"
)

type Env struct {
	DB       *gorm.DB
	Store    repository.Store
	Services *services.Services
}

// New opens a fresh database file under t.TempDir.
func New(t *testing.T) *Env {
	t.Helper()

	db, err := config.OpenDB(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.New(db)
	svc := services.New(store)
	svc.Users.SetHashCost(bcrypt.MinCost)
	return &Env{DB: db, Store: store, Services: svc}
}

var seq atomic.Int64

// User registers a user with the given role and returns its principal.
// The password is always "secret".
func (e *Env) User(t *testing.T, role models.Role) models.Principal {
	t.Helper()
	n := seq.Add(1)
	user, err := e.Services.Users.Register(context.Background(), services.RegisterInput{
		UserName: fmt.Sprintf("%s %d", role, n),
		Email:    fmt.Sprintf("%s%d@example.com", role, n),
		Password: "secret",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", role, err)
	}
	return models.Principal{ID: user.ID, Email: user.Email, Name: user.UserName, Role: user.Role}
}

// ApprovedVehicle proposes a vehicle as driver and approves it as admin.
func (e *Env) ApprovedVehicle(t *testing.T, driver, admin models.Principal, capacity int) *services.VehicleView {
	t.Helper()
	ctx := context.Background()
	n := seq.Add(1)
	v, err := e.Services.Vehicles.Propose(ctx, driver, services.VehicleInput{
		PlateNumber: fmt.Sprintf("KAA %03dX", n),
		Make:        "Isuzu",
		Model:       "NQR",
		Year:        2020,
		Capacity:    capacity,
	})
	if err != nil {
		t.Fatalf("propose vehicle: %v", err)
	}
	v, err = e.Services.Vehicles.Approve(ctx, admin, v.ID)
	if err != nil {
		t.Fatalf("approve vehicle: %v", err)
	}
	return v
}

func RouteInput() services.RouteInput {
	f := func(v float64) *float64 { return &v }
	minutes := 45
	return services.RouteInput{
		RouteName:         "CBD - Westlands",
		StartLocationName: "CBD",
		StartLocationLat:  f(-1.2864),
		StartLocationLng:  f(36.8172),
		EndLocationName:   "Westlands",
		EndLocationLat:    f(-1.2676),
		EndLocationLng:    f(36.8108),
		Distance:          f(5.2),
		EstimatedTime:     &minutes,
	}
}

// ApprovedRoute proposes a route as driver and approves it as admin.
func (e *Env) ApprovedRoute(t *testing.T, driver, admin models.Principal) *services.RouteView {
	t.Helper()
	ctx := context.Background()
	r, err := e.Services.Routes.Propose(ctx, driver, RouteInput())
	if err != nil {
		t.Fatalf("propose route: %v", err)
	}
	r, err = e.Services.Routes.Approve(ctx, admin, r.ID)
	if err != nil {
		t.Fatalf("approve route: %v", err)
	}
	return r
}

// Trip schedules a trip departing in an hour.
func (e *Env) Trip(t *testing.T, driver models.Principal, routeID, vehicleID uint, seats int) *services.TripView {
	t.Helper()
	departure := time.Now().UTC().Add(time.Hour)
	trip, err := e.Services.Trips.Create(context.Background(), driver, services.TripInput{
		RouteID:        routeID,
		VehicleID:      vehicleID,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(45 * time.Minute),
		Fare:           100,
		AvailableSeats: seats,
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}

// Fleet is a driver with an approved vehicle and route, ready to run trips.
type Fleet struct {
	Admin     models.Principal
	Driver    models.Principal
	Passenger models.Principal
	Vehicle   *services.VehicleView
	Route     *services.RouteView
}

func (e *Env) Fleet(t *testing.T, capacity int) Fleet {
	t.Helper()
	f := Fleet{
		Admin:     e.User(t, models.RoleAdmin),
		Driver:    e.User(t, models.RoleDriver),
		Passenger: e.User(t, models.RolePassenger),
	}
	f.Vehicle = e.ApprovedVehicle(t, f.Driver, f.Admin, capacity)
	f.Route = e.ApprovedRoute(t, f.Driver, f.Admin)
	return f
}

// SeatLedgerBalanced reports whether available + live bookings equals the
// trip's total seats.
func (e *Env) SeatLedgerBalanced(t *testing.T, tripID uint) bool {
	t.Helper()
	var trip models.Trip
	if err := e.DB.First(&trip, tripID).Error; err != nil {
		t.Fatalf("load trip: %v", err)
	}
	var live int64
	err := e.DB.Model(&models.Booking{}).
		Where("trip_id = ? AND status <> ?", tripID, models.BookingCancelled).
		Count(&live).Error
	if err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	return int64(trip.AvailableSeats)+live == int64(trip.TotalSeats)
}
