package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"bus_tracker/internal/geo"
	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
)

type TripInput struct {
	RouteID        uint      `json:"route_id" binding:"required"`
	VehicleID      uint      `json:"vehicle_id" binding:"required"`
	DepartureTime  time.Time `json:"departure_time" binding:"required"`
	ArrivalTime    time.Time `json:"arrival_time" binding:"required"`
	Fare           float64   `json:"fare" binding:"required,gt=0"`
	AvailableSeats int       `json:"available_seats" binding:"required,gt=0"`
}

// tripTimeLayouts are tried in order. The last two are what an HTML
// datetime-local input sends; they carry no zone and are read as UTC.
var tripTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseTripTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range tripTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Invalid(field + " must be RFC3339 or YYYY-MM-DDTHH:MM")
}

// UnmarshalJSON accepts departure and arrival times with or without a zone.
func (in *TripInput) UnmarshalJSON(b []byte) error {
	type plain TripInput
	var wire struct {
		plain
		DepartureTime string `json:"departure_time"`
		ArrivalTime   string `json:"arrival_time"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*in = TripInput(wire.plain)

	var err error
	if in.DepartureTime, err = parseTripTime("departure_time", wire.DepartureTime); err != nil {
		return err
	}
	in.ArrivalTime, err = parseTripTime("arrival_time", wire.ArrivalTime)
	return err
}

type LocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// UnmarshalJSON also takes the short {lat, lng} form.
func (in *LocationInput) UnmarshalJSON(b []byte) error {
	type plain LocationInput
	var wire struct {
		plain
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*in = LocationInput(wire.plain)
	if in.Latitude == nil {
		in.Latitude = wire.Lat
	}
	if in.Longitude == nil {
		in.Longitude = wire.Lng
	}
	return nil
}

// Position is the latest ping of a trip as clients draw it.
type Position struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

func positionOf(loc models.TripLocation) *Position {
	return &Position{Lat: loc.Latitude, Lng: loc.Longitude, Timestamp: loc.Timestamp}
}

type TripView struct {
	models.Trip
	RouteName         string               `json:"route_name"`
	StartLocationName string               `json:"start_location_name"`
	StartLocationLat  float64              `json:"start_location_lat"`
	StartLocationLng  float64              `json:"start_location_lng"`
	EndLocationName   string               `json:"end_location_name"`
	EndLocationLat    float64              `json:"end_location_lat"`
	EndLocationLng    float64              `json:"end_location_lng"`
	RouteApproved     bool                 `json:"route_approved"`
	PlateNumber       string               `json:"plate_number"`
	DriverName        string               `json:"driver_name"`
	CurrentLocation   *Position            `json:"current_location"`
}

func tripView(t models.Trip) TripView {
	view := TripView{Trip: t, DriverName: nameOf(t.Driver)}
	if r := t.Route; r != nil {
		view.RouteName = r.RouteName
		view.StartLocationName = r.StartLocationName
		view.StartLocationLat = r.StartLocationLat
		view.StartLocationLng = r.StartLocationLng
		view.EndLocationName = r.EndLocationName
		view.EndLocationLat = r.EndLocationLat
		view.EndLocationLng = r.EndLocationLng
		view.RouteApproved = r.Approved
	}
	if t.Vehicle != nil {
		view.PlateNumber = t.Vehicle.PlateNumber
	}
	return view
}

// Track is the full ping history of a trip, oldest first.
type Track struct {
	TripID    uint                  `json:"trip_id"`
	Locations []models.TripLocation `json:"locations"`
	GeoJSON   json.RawMessage       `json:"geojson"`
}

type SeatMap struct {
	TripID         uint  `json:"trip_id"`
	Capacity       int   `json:"capacity"`
	AvailableSeats int   `json:"available_seats"`
	TotalSeats     int   `json:"total_seats"`
	TakenSeats     []int `json:"taken_seats"`
}

type TripService struct {
	store repository.Store
	now   func() time.Time
}

func NewTripService(store repository.Store) *TripService {
	return &TripService{store: store, now: utcNow}
}

// Create schedules a trip on an approved route. Drivers may only use
// routes they proposed and vehicles assigned to them.
func (s *TripService) Create(ctx context.Context, p models.Principal, in TripInput) (*TripView, error) {
	if !p.IsDriver() && !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if !in.ArrivalTime.After(in.DepartureTime) {
		return nil, Invalid("arrival_time must be after departure_time")
	}

	route, err := s.store.Routes().ByID(ctx, in.RouteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}
	if !route.Approved {
		return nil, ErrRouteNotApproved
	}

	if p.IsDriver() && route.ProposedByDriverID != p.ID {
		return nil, ErrForbidden
	}

	vehicle, err := s.store.Vehicles().ByID(ctx, in.VehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		if p.IsDriver() {
			return nil, ErrVehicleNotOwned
		}
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.IsDriver() && (vehicle.DriverID == nil || *vehicle.DriverID != p.ID) {
		return nil, ErrVehicleNotOwned
	}
	// Seat numbers run 1..capacity.
	if in.AvailableSeats > vehicle.Capacity {
		return nil, Invalid(fmt.Sprintf("available_seats must not exceed the vehicle capacity of %d", vehicle.Capacity))
	}

	trip := &models.Trip{
		RouteID:        in.RouteID,
		VehicleID:      in.VehicleID,
		DriverID:       p.ID,
		DepartureTime:  in.DepartureTime.UTC(),
		ArrivalTime:    in.ArrivalTime.UTC(),
		Status:         models.TripScheduled,
		Fare:           in.Fare,
		AvailableSeats: in.AvailableSeats,
		TotalSeats:     in.AvailableSeats,
	}
	if err := s.store.Trips().Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":    trip.ID,
		"route_id":   trip.RouteID,
		"vehicle_id": trip.VehicleID,
		"driver_id":  p.ID,
	}).Info("trip scheduled")
	return s.view(ctx, trip.ID)
}

// UpdateStatus accepts any transition between the four states.
func (s *TripService) UpdateStatus(ctx context.Context, p models.Principal, id uint, status models.TripStatus) (*TripView, error) {
	if !p.IsDriver() && !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	trip, err := s.trip(ctx, id)
	// Drivers get 403 for trips that are missing or not theirs.
	if p.IsDriver() && (errors.Is(err, ErrTripNotFound) || err == nil && trip.DriverID != p.ID) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	changed, err := s.store.Trips().SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrTripNotFound
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": id,
		"from":    trip.Status,
		"to":      status,
		"actor":   p.ID,
	}).Info("trip status changed")
	return s.view(ctx, id)
}

// RecordLocation appends a ping for a trip that is on route.
func (s *TripService) RecordLocation(ctx context.Context, p models.Principal, id uint, in LocationInput) (*models.TripLocation, error) {
	if !p.IsDriver() {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if !geo.ValidCoordinate(*in.Latitude, *in.Longitude) {
		return nil, Invalid(geo.ErrCoordinateRange.Error())
	}

	trip, err := s.trip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != p.ID {
		return nil, ErrForbidden
	}
	if trip.Status != models.TripOnRoute {
		return nil, ErrTripNotOnRoute
	}

	loc := &models.TripLocation{
		TripID:    id,
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Timestamp: s.now().UTC(),
	}
	if err := s.store.Trips().AppendLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("record location: %w", err)
	}
	logrus.WithFields(logrus.Fields{"trip_id": id, "location_id": loc.ID}).Debug("location recorded")
	return loc, nil
}

// List returns the trips visible to p, soonest departure first, each with
// its latest known position. Passengers only see trips they can book.
func (s *TripService) List(ctx context.Context, p models.Principal) ([]TripView, error) {
	var filter repository.TripFilter
	switch {
	case p.IsAdmin():
	case p.IsDriver():
		filter.DriverID = &p.ID
	default:
		now := s.now().UTC()
		filter.BookableAfter = &now
	}

	trips, err := s.store.Trips().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}
	latest, err := s.store.Trips().LatestLocations(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]TripView, 0, len(trips))
	for _, t := range trips {
		view := tripView(t)
		if loc, ok := latest[t.ID]; ok {
			view.CurrentLocation = positionOf(loc)
		}
		views = append(views, view)
	}
	return views, nil
}

// Locations returns the ping history as rows and as GeoJSON.
func (s *TripService) Locations(ctx context.Context, p models.Principal, id uint) (*Track, error) {
	trip, err := s.trip(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDriver() && trip.DriverID != p.ID {
		return nil, ErrForbidden
	}

	locs, err := s.store.Trips().Locations(ctx, id)
	if err != nil {
		return nil, err
	}
	points := make([]geo.Point, len(locs))
	for i, l := range locs {
		points[i] = geo.Point{Lat: l.Latitude, Lng: l.Longitude}
	}
	track, err := geo.Track(points)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []models.TripLocation{}
	}
	return &Track{TripID: id, Locations: locs, GeoJSON: track}, nil
}

func (s *TripService) Seats(ctx context.Context, id uint) (*SeatMap, error) {
	trip, err := s.trip(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.store.Bookings().TakenSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	if taken == nil {
		taken = []int{}
	}
	seats := &SeatMap{
		TripID:         id,
		AvailableSeats: trip.AvailableSeats,
		TotalSeats:     trip.TotalSeats,
		TakenSeats:     taken,
	}
	if trip.Vehicle != nil {
		seats.Capacity = trip.Vehicle.Capacity
	}
	return seats, nil
}

func (s *TripService) trip(ctx context.Context, id uint) (*models.Trip, error) {
	trip, err := s.store.Trips().ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTripNotFound
	}
	return trip, err
}

func (s *TripService) view(ctx context.Context, id uint) (*TripView, error) {
	trip, err := s.trip(ctx, id)
	if err != nil {
		return nil, err
	}
	view := tripView(*trip)
	latest, err := s.store.Trips().LatestLocations(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if loc, ok := latest[id]; ok {
		view.CurrentLocation = positionOf(loc)
	}
	return &view, nil
}
