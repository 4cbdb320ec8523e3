package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/config"
	"bus_tracker/internal/models"
)

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.db")
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.Migrate(db))

	for _, table := range []string{"users", "vehicles", "routes", "trips", "trip_locations", "bookings"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Booking{}, "idx_bookings_active_seat"))
	assert.True(t, db.Migrator().HasIndex(&models.TripLocation{}, "idx_trip_locations_trip_ts"))
}

func TestActiveSeatIndex(t *testing.T) {
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bus.db")})
	require.NoError(t, err)

	driver := models.User{UserName: "d", Email: "d@example.com", Password: "x", Role: models.RoleDriver}
	passenger := models.User{UserName: "p", Email: "p@example.com", Password: "x", Role: models.RolePassenger}
	require.NoError(t, db.Create(&driver).Error)
	require.NoError(t, db.Create(&passenger).Error)

	vehicle := models.Vehicle{PlateNumber: "KAA 1", Make: "m", Model: "m", Year: 2020, Capacity: 10, ProposedByDriverID: driver.ID, Status: models.VehicleActive, ApprovalStatus: models.ApprovalApproved}
	require.NoError(t, db.Create(&vehicle).Error)
	route := models.Route{RouteName: "r", StartLocationName: "a", EndLocationName: "b", ProposedByDriverID: driver.ID, ApprovalStatus: models.ApprovalApproved}
	require.NoError(t, db.Create(&route).Error)
	now := time.Now().UTC()
	trip := models.Trip{RouteID: route.ID, VehicleID: vehicle.ID, DriverID: driver.ID, DepartureTime: now, ArrivalTime: now.Add(time.Hour), Status: models.TripScheduled, Fare: 1, AvailableSeats: 10, TotalSeats: 10}
	require.NoError(t, db.Create(&trip).Error)

	first := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, SeatNumber: 1, BookingDate: now, Status: models.BookingConfirmed}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, SeatNumber: 1, BookingDate: now, Status: models.BookingConfirmed}
	assert.Error(t, db.Create(&dup).Error)

	require.NoError(t, db.Model(&first).Update("status", models.BookingCancelled).Error)
	again := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, SeatNumber: 1, BookingDate: now, Status: models.BookingConfirmed}
	assert.NoError(t, db.Create(&again).Error)
}

func TestSQLiteDSN(t *testing.T) {
	dsn := config.SQLiteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "_pragma=foreign_keys(1)")
	assert.Contains(t, dsn, "_txlock=immediate")
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := config.OpenDB(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
