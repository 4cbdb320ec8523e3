package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/services"
)

func TestRouteInputNestedLocations(t *testing.T) {
	var in services.RouteInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"route_name": "Ratnapark - Lagankhel",
		"start_location": {"name": "Ratnapark", "lat": 27.7056, "lng": 85.3149},
		"end_location": {"name": "Lagankhel", "lat": 27.6667, "lng": 85.3228},
		"distance": 6.2, "estimated_time": 25
	}`), &in))

	assert.Equal(t, "Ratnapark", in.StartLocationName)
	require.NotNil(t, in.StartLocationLat)
	assert.Equal(t, 27.7056, *in.StartLocationLat)
	assert.Equal(t, 85.3149, *in.StartLocationLng)
	assert.Equal(t, "Lagankhel", in.EndLocationName)
	assert.Equal(t, 85.3228, *in.EndLocationLng)
	assert.Equal(t, 25, *in.EstimatedTime)
}

func TestRouteInputFlatFieldsWin(t *testing.T) {
	var in services.RouteInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"start_location_name": "Flat", "start_location_lat": 1,
		"start_location": {"name": "Nested", "lat": 2, "lng": 3}
	}`), &in))
	assert.Equal(t, "Flat", in.StartLocationName)
	assert.Equal(t, 1.0, *in.StartLocationLat)
	assert.Equal(t, 3.0, *in.StartLocationLng)
}

func TestNestedTypeErrors(t *testing.T) {
	var in services.RouteInput
	err := json.Unmarshal([]byte(`{"start_location": {"name": "A", "lat": "27.7", "lng": 85.3}}`), &in)
	require.Error(t, err)
	e := services.BindError(err)
	assert.ErrorIs(t, e, services.ErrValidation)
	assert.Equal(t, "start_location.lat must be a number", e.Message)

	err = json.Unmarshal([]byte(`{"end_location": {"name": 7, "lat": 1, "lng": 1}}`), &in)
	require.Error(t, err)
	assert.Equal(t, "end_location.name must be a string", services.BindError(err).Message)

	err = json.Unmarshal([]byte(`{"start_location_lat": "north"}`), &in)
	require.Error(t, err)
	assert.Equal(t, "start_location_lat must be a number", services.BindError(err).Message)
}

func TestTripInputTimes(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want time.Time
	}{
		"datetime-local":      {"2026-10-17T03:03", time.Date(2026, 10, 17, 3, 3, 0, 0, time.UTC)},
		"with seconds":        {"2026-10-17T03:03:30", time.Date(2026, 10, 17, 3, 3, 30, 0, time.UTC)},
		"RFC3339":             {"2026-10-17T03:03:00Z", time.Date(2026, 10, 17, 3, 3, 0, 0, time.UTC)},
		"RFC3339 with offset": {"2026-10-17T08:48:00+05:45", time.Date(2026, 10, 17, 3, 3, 0, 0, time.UTC)},
		"fractional seconds":  {"2026-10-17T03:03:00.500Z", time.Date(2026, 10, 17, 3, 3, 0, 5e8, time.UTC)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var in services.TripInput
			body := `{"route_id": 1, "vehicle_id": 2, "fare": 50, "available_seats": 4, "departure_time": "` +
				tc.raw + `", "arrival_time": "2026-10-18T00:00"}`
			require.NoError(t, json.Unmarshal([]byte(body), &in))
			assert.True(t, tc.want.Equal(in.DepartureTime), in.DepartureTime)
			assert.Equal(t, uint(1), in.RouteID)
			assert.Equal(t, 4, in.AvailableSeats)
		})
	}
}

func TestTripInputBadTime(t *testing.T) {
	var in services.TripInput
	err := json.Unmarshal([]byte(`{"departure_time": "tomorrow"}`), &in)
	require.Error(t, err)
	e := services.BindError(err)
	assert.ErrorIs(t, e, services.ErrValidation)
	assert.Contains(t, e.Message, "departure_time")

	// Missing times stay zero and fail the required check later.
	require.NoError(t, json.Unmarshal([]byte(`{"route_id": 1}`), &in))
	assert.True(t, in.DepartureTime.IsZero())
}

func TestLocationInputShortKeys(t *testing.T) {
	var in services.LocationInput
	require.NoError(t, json.Unmarshal([]byte(`{"lat": 27.75, "lng": 85.35}`), &in))
	require.NotNil(t, in.Latitude)
	require.NotNil(t, in.Longitude)
	assert.Equal(t, 27.75, *in.Latitude)
	assert.Equal(t, 85.35, *in.Longitude)

	in = services.LocationInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"latitude": 1.5, "longitude": 2.5}`), &in))
	assert.Equal(t, 1.5, *in.Latitude)
	assert.Equal(t, 2.5, *in.Longitude)
}

func TestBookingInputNestedStops(t *testing.T) {
	var in services.BookingInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"trip_id": 3, "seat_number": 2,
		"pickup_location": {"lat": 27.7, "lng": 85.3},
		"dropoff_location": {"lat": 27.6, "lng": 85.32}
	}`), &in))

	assert.Equal(t, uint(3), in.TripID)
	assert.Equal(t, 2, in.SeatNumber)
	require.NotNil(t, in.PickupLocationLat)
	assert.Equal(t, 27.7, *in.PickupLocationLat)
	assert.Equal(t, 85.3, *in.PickupLocationLng)
	assert.Equal(t, 27.6, *in.DropoffLocationLat)
	assert.Equal(t, 85.32, *in.DropoffLocationLng)
}
