package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/models"
	"bus_tracker/internal/services"
	"bus_tracker/internal/testutil"
)

func tripInput(routeID, vehicleID uint, seats int) services.TripInput {
	departure := time.Now().UTC().Add(2 * time.Hour)
	return services.TripInput{
		RouteID:        routeID,
		VehicleID:      vehicleID,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(time.Hour),
		Fare:           80,
		AvailableSeats: seats,
	}
}

func f64(v float64) *float64 { return &v }

func TestCreateTrip(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 14)

	trip, err := env.Services.Trips.Create(ctx, fleet.Driver, tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, models.TripScheduled, trip.Status)
	assert.Equal(t, fleet.Driver.ID, trip.DriverID)
	assert.Equal(t, 10, trip.AvailableSeats)
	assert.Equal(t, 10, trip.TotalSeats)
	assert.Equal(t, fleet.Route.RouteName, trip.RouteName)
	assert.Equal(t, fleet.Vehicle.PlateNumber, trip.PlateNumber)
	assert.Nil(t, trip.CurrentLocation)
}

func TestCreateTripPreconditions(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 14)
	trips := env.Services.Trips

	_, err := trips.Create(ctx, fleet.Driver, tripInput(9999, fleet.Vehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrRouteNotFound)

	pending, err := env.Services.Routes.Propose(ctx, fleet.Driver, testutil.RouteInput())
	require.NoError(t, err)
	_, err = trips.Create(ctx, fleet.Driver, tripInput(pending.ID, fleet.Vehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrRouteNotApproved)
	_, err = trips.Create(ctx, fleet.Admin, tripInput(pending.ID, fleet.Vehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrRouteNotApproved)

	other := env.User(t, models.RoleDriver)
	_, err = trips.Create(ctx, other, tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrForbidden)

	// The driver's own route but someone else's vehicle.
	otherVehicle := env.ApprovedVehicle(t, other, fleet.Admin, 14)
	_, err = trips.Create(ctx, fleet.Driver, tripInput(fleet.Route.ID, otherVehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrVehicleNotOwned)

	_, err = trips.Create(ctx, fleet.Admin, tripInput(fleet.Route.ID, 9999, 10))
	assert.ErrorIs(t, err, services.ErrVehicleNotFound)

	_, err = trips.Create(ctx, fleet.Passenger, tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrForbidden)

	in := tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10)
	in.ArrivalTime = in.DepartureTime.Add(-time.Minute)
	_, err = trips.Create(ctx, fleet.Driver, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	in = tripInput(fleet.Route.ID, fleet.Vehicle.ID, 0)
	_, err = trips.Create(ctx, fleet.Driver, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	in = tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10)
	in.Fare = 0
	_, err = trips.Create(ctx, fleet.Driver, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	// Admins may schedule on any vehicle.
	trip, err := trips.Create(ctx, fleet.Admin, tripInput(fleet.Route.ID, otherVehicle.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, fleet.Admin.ID, trip.DriverID)
}

func TestCreateTripSeatsBoundedByCapacity(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 4)
	trips := env.Services.Trips

	_, err := trips.Create(ctx, fleet.Driver, tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10))
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = trips.Create(ctx, fleet.Admin, tripInput(fleet.Route.ID, fleet.Vehicle.ID, 5))
	assert.ErrorIs(t, err, services.ErrValidation)

	trip, err := trips.Create(ctx, fleet.Driver, tripInput(fleet.Route.ID, fleet.Vehicle.ID, 4))
	require.NoError(t, err)

	for seat := 1; seat <= 4; seat++ {
		_, err := env.Services.Bookings.Create(ctx, fleet.Passenger, services.BookingInput{TripID: trip.ID, SeatNumber: seat})
		require.NoError(t, err)
	}
	seats, err := trips.Seats(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, seats.Capacity)
	assert.Equal(t, 0, seats.AvailableSeats)
	assert.Equal(t, []int{1, 2, 3, 4}, seats.TakenSeats)
	assert.True(t, env.SeatLedgerBalanced(t, trip.ID))
}

func TestUpdateTripStatus(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 14)
	trip := env.Trip(t, fleet.Driver, fleet.Route.ID, fleet.Vehicle.ID, 10)
	trips := env.Services.Trips

	_, err := trips.UpdateStatus(ctx, fleet.Driver, trip.ID, "flying")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	other := env.User(t, models.RoleDriver)
	_, err = trips.UpdateStatus(ctx, other, trip.ID, models.TripOnRoute)
	assert.ErrorIs(t, err, services.ErrForbidden)

	// Drivers cannot tell a missing trip from someone else's.
	_, err = trips.UpdateStatus(ctx, fleet.Driver, 9999, models.TripOnRoute)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = trips.UpdateStatus(ctx, fleet.Admin, 9999, models.TripOnRoute)
	assert.ErrorIs(t, err, services.ErrTripNotFound)

	got, err := trips.UpdateStatus(ctx, fleet.Driver, trip.ID, models.TripCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, got.Status)

	// Transitions are unrestricted.
	got, err = trips.UpdateStatus(ctx, fleet.Admin, trip.ID, models.TripScheduled)
	require.NoError(t, err)
	assert.Equal(t, models.TripScheduled, got.Status)
}

func TestRecordLocationRequiresOnRoute(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 14)
	trip := env.Trip(t, fleet.Driver, fleet.Route.ID, fleet.Vehicle.ID, 10)
	trips := env.Services.Trips
	ping := services.LocationInput{Latitude: f64(-1.28), Longitude: f64(36.82)}

	_, err := trips.RecordLocation(ctx, fleet.Driver, trip.ID, ping)
	assert.ErrorIs(t, err, services.ErrTripNotOnRoute)

	_, err = trips.UpdateStatus(ctx, fleet.Driver, trip.ID, models.TripOnRoute)
	require.NoError(t, err)

	other := env.User(t, models.RoleDriver)
	_, err = trips.RecordLocation(ctx, other, trip.ID, ping)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = trips.RecordLocation(ctx, fleet.Admin, trip.ID, ping)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = trips.RecordLocation(ctx, fleet.Driver, trip.ID, services.LocationInput{Latitude: f64(120), Longitude: f64(36.82)})
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = trips.RecordLocation(ctx, fleet.Driver, trip.ID, services.LocationInput{Latitude: f64(-1.28)})
	assert.ErrorIs(t, err, services.ErrValidation)

	loc, err := trips.RecordLocation(ctx, fleet.Driver, trip.ID, ping)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, loc.TripID)
	assert.NotZero(t, loc.ID)
}

func TestCurrentLocationIsLatestPing(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 14)
	trip := env.Trip(t, fleet.Driver, fleet.Route.ID, fleet.Vehicle.ID, 10)
	idle := env.Trip(t, fleet.Driver, fleet.Route.ID, fleet.Vehicle.ID, 10)
	trips := env.Services.Trips

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env.Services.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	_, err := trips.UpdateStatus(ctx, fleet.Driver, trip.ID, models.TripOnRoute)
	require.NoError(t, err)
	pings := [][2]float64{{-1.2864, 36.8172}, {-1.2800, 36.8150}, {-1.2676, 36.8108}}
	for _, p := range pings {
		_, err := trips.RecordLocation(ctx, fleet.Driver, trip.ID, services.LocationInput{Latitude: f64(p[0]), Longitude: f64(p[1])})
		require.NoError(t, err)
	}

	list, err := trips.List(ctx, fleet.Driver)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[uint]services.TripView{}
	for _, v := range list {
		byID[v.ID] = v
	}

	current := byID[trip.ID].CurrentLocation
	require.NotNil(t, current)
	assert.Equal(t, -1.2676, current.Lat)
	assert.Equal(t, 36.8108, current.Lng)
	assert.True(t, clock.Equal(current.Timestamp), current.Timestamp)
	assert.Nil(t, byID[idle.ID].CurrentLocation)

	track, err := trips.Locations(ctx, fleet.Passenger, trip.ID)
	require.NoError(t, err)
	require.Len(t, track.Locations, 3)
	assert.Equal(t, -1.2864, track.Locations[0].Latitude)
	var g geometry
	require.NoError(t, json.Unmarshal(track.GeoJSON, &g))
	assert.Equal(t, "LineString", g.Type)
	assert.Len(t, g.Coordinates, 3)

	empty, err := trips.Locations(ctx, fleet.Driver, idle.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Locations)
	assert.Nil(t, empty.GeoJSON)

	other := env.User(t, models.RoleDriver)
	_, err = trips.Locations(ctx, other, trip.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestTripListVisibility(t *testing.T) {
	env := testutil.New(t)
	ctx := context.Background()
	fleet := env.Fleet(t, 14)
	trips := env.Services.Trips

	bookable := env.Trip(t, fleet.Driver, fleet.Route.ID, fleet.Vehicle.ID, 10)
	running := env.Trip(t, fleet.Driver, fleet.Route.ID, fleet.Vehicle.ID, 10)
	_, err := trips.UpdateStatus(ctx, fleet.Driver, running.ID, models.TripOnRoute)
	require.NoError(t, err)

	past := tripInput(fleet.Route.ID, fleet.Vehicle.ID, 10)
	past.DepartureTime = time.Now().UTC().Add(-3 * time.Hour)
	past.ArrivalTime = past.DepartureTime.Add(time.Hour)
	_, err = trips.Create(ctx, fleet.Driver, past)
	require.NoError(t, err)

	other := env.User(t, models.RoleDriver)
	otherRoute := env.ApprovedRoute(t, other, fleet.Admin)
	otherVehicle := env.ApprovedVehicle(t, other, fleet.Admin, 14)
	env.Trip(t, other, otherRoute.ID, otherVehicle.ID, 10)

	forPassenger, err := trips.List(ctx, fleet.Passenger)
	require.NoError(t, err)
	ids := []uint{}
	for _, v := range forPassenger {
		ids = append(ids, v.ID)
		assert.Equal(t, models.TripScheduled, v.Status)
		assert.True(t, v.RouteApproved)
	}
	assert.Contains(t, ids, bookable.ID)
	assert.NotContains(t, ids, running.ID)
	assert.Len(t, forPassenger, 2)

	forDriver, err := trips.List(ctx, fleet.Driver)
	require.NoError(t, err)
	assert.Len(t, forDriver, 3)
	for _, v := range forDriver {
		assert.Equal(t, fleet.Driver.ID, v.DriverID)
	}
	// Ordered by departure.
	for i := 1; i < len(forDriver); i++ {
		assert.False(t, forDriver[i].DepartureTime.Before(forDriver[i-1].DepartureTime))
	}

	forAdmin, err := trips.List(ctx, fleet.Admin)
	require.NoError(t, err)
	assert.Len(t, forAdmin, 4)
}
