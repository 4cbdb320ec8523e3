package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bus_tracker/internal/geo"
	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
)

type RouteInput struct {
	RouteName         string   `json:"route_name" binding:"required"`
	StartLocationName string   `json:"start_location_name" binding:"required"`
	StartLocationLat  *float64 `json:"start_location_lat" binding:"required,min=-90,max=90"`
	StartLocationLng  *float64 `json:"start_location_lng" binding:"required,min=-180,max=180"`
	EndLocationName   string   `json:"end_location_name" binding:"required"`
	EndLocationLat    *float64 `json:"end_location_lat" binding:"required,min=-90,max=90"`
	EndLocationLng    *float64 `json:"end_location_lng" binding:"required,min=-180,max=180"`
	Distance          *float64 `json:"distance" binding:"required,gte=0"`
	EstimatedTime     *int     `json:"estimated_time" binding:"required,gte=0"`

	// Optional GeoJSON LineString, either inline or as a JSON string.
	Geometry json.RawMessage `json:"geometry"`
}

// Place is a named endpoint as the map picker sends it.
type Place struct {
	Name *string  `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// UnmarshalJSON also takes the endpoints as nested start_location and
// end_location objects. Flat fields win when both are sent.
func (in *RouteInput) UnmarshalJSON(b []byte) error {
	type plain RouteInput
	var wire struct {
		plain
		StartLocation *Place `json:"start_location"`
		EndLocation   *Place `json:"end_location"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*in = RouteInput(wire.plain)
	fillPlace(wire.StartLocation, &in.StartLocationName, &in.StartLocationLat, &in.StartLocationLng)
	fillPlace(wire.EndLocation, &in.EndLocationName, &in.EndLocationLat, &in.EndLocationLng)
	return nil
}

func fillPlace(p *Place, name *string, lat, lng **float64) {
	if p == nil {
		return
	}
	if *name == "" && p.Name != nil {
		*name = *p.Name
	}
	if *lat == nil {
		*lat = p.Lat
	}
	if *lng == nil {
		*lng = p.Lng
	}
}

type RouteView struct {
	models.Route
	Geometry             json.RawMessage `json:"geometry"`
	ProposedByDriverName string          `json:"proposed_by_driver_name,omitempty"`
	ApprovedByAdminName  string          `json:"approved_by_admin_name,omitempty"`
}

func routeView(r models.Route) RouteView {
	view := RouteView{
		Route:                r,
		ProposedByDriverName: nameOf(r.ProposedBy),
		ApprovedByAdminName:  nameOf(r.ApprovedBy),
	}
	g, err := geo.ToGeoJSON(r.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", r.ID).Warn("stored route geometry is unreadable")
	}
	view.Geometry = g
	return view
}

// geometryText unwraps a geometry sent as a JSON string.
func geometryText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return trimmed, nil
}

type RouteService struct {
	store repository.Store
	now   func() time.Time
}

func NewRouteService(store repository.Store) *RouteService {
	return &RouteService{store: store, now: utcNow}
}

func (s *RouteService) Propose(ctx context.Context, p models.Principal, in RouteInput) (*RouteView, error) {
	if !p.IsDriver() {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}

	raw, err := geometryText(in.Geometry)
	if err != nil {
		return nil, Invalid("geometry must be GeoJSON")
	}
	start := geo.Point{Lat: *in.StartLocationLat, Lng: *in.StartLocationLng}
	end := geo.Point{Lat: *in.EndLocationLat, Lng: *in.EndLocationLng}
	line, err := geo.RouteLine(start, end, raw)
	if err != nil {
		return nil, Invalid(err.Error())
	}

	route := &models.Route{
		RouteName:          strings.TrimSpace(in.RouteName),
		StartLocationName:  strings.TrimSpace(in.StartLocationName),
		StartLocationLat:   start.Lat,
		StartLocationLng:   start.Lng,
		EndLocationName:    strings.TrimSpace(in.EndLocationName),
		EndLocationLat:     end.Lat,
		EndLocationLng:     end.Lng,
		Distance:           *in.Distance,
		EstimatedTime:      *in.EstimatedTime,
		Geometry:           line,
		ProposedByDriverID: p.ID,
		ApprovalStatus:     models.ApprovalPending,
	}
	if err := s.store.Routes().Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	logrus.WithFields(logrus.Fields{"route_id": route.ID, "driver_id": p.ID}).Info("route proposed")
	return s.view(ctx, route.ID)
}

func (s *RouteService) Approve(ctx context.Context, p models.Principal, id uint) (*RouteView, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	changed, err := s.store.Routes().Approve(ctx, id, p.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotFoundOrAlreadyApproved
	}

	logrus.WithFields(logrus.Fields{"route_id": id, "admin_id": p.ID}).Info("route approved")
	return s.view(ctx, id)
}

func (s *RouteService) Reject(ctx context.Context, p models.Principal, id uint, reason string) (*RouteView, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	changed, err := s.store.Routes().Reject(ctx, id, p.ID, strings.TrimSpace(reason), s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotFoundOrNotPending
	}

	logrus.WithFields(logrus.Fields{"route_id": id, "admin_id": p.ID}).Info("route rejected")
	return s.view(ctx, id)
}

func (s *RouteService) List(ctx context.Context, p models.Principal, q ApprovalQuery) ([]RouteView, error) {
	var filter repository.RouteFilter
	switch {
	case p.IsAdmin():
		filter.ApprovalStatus = q.status()
	case p.IsDriver() && q.Mine:
		filter.ProposedBy = &p.ID
	default:
		filter.ApprovalStatus = approvedOnly()
	}

	routes, err := s.store.Routes().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]RouteView, 0, len(routes))
	for _, r := range routes {
		views = append(views, routeView(r))
	}
	return views, nil
}

func (s *RouteService) Get(ctx context.Context, p models.Principal, id uint) (*RouteView, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !view.Approved {
		return nil, ErrRouteNotFound
	}
	return view, nil
}

func (s *RouteService) view(ctx context.Context, id uint) (*RouteView, error) {
	route, err := s.store.Routes().ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}
	view := routeView(*route)
	return &view, nil
}
