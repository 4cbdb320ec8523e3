package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
)

type VehicleInput struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	Make        string `json:"make" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Year        int    `json:"year" binding:"required,gt=0"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
}

// VehicleUpdate is a partial update; nil fields are left alone.
type VehicleUpdate struct {
	PlateNumber *string               `json:"plate_number" binding:"omitempty,min=1"`
	Make        *string               `json:"make" binding:"omitempty,min=1"`
	Model       *string               `json:"model" binding:"omitempty,min=1"`
	Year        *int                  `json:"year" binding:"omitempty,gt=0"`
	Capacity    *int                  `json:"capacity" binding:"omitempty,gt=0"`
	Status      *models.VehicleStatus `json:"status"`
	DriverID    *uint                 `json:"driver_id"`
}

type VehicleView struct {
	models.Vehicle
	DriverName           string `json:"driver_name,omitempty"`
	ProposedByDriverName string `json:"proposed_by_driver_name,omitempty"`
	ApprovedByAdminName  string `json:"approved_by_admin_name,omitempty"`
}

func vehicleView(v models.Vehicle) VehicleView {
	return VehicleView{
		Vehicle:              v,
		DriverName:           nameOf(v.Driver),
		ProposedByDriverName: nameOf(v.ProposedBy),
		ApprovedByAdminName:  nameOf(v.ApprovedBy),
	}
}

type VehicleService struct {
	store repository.Store
	now   func() time.Time
}

func NewVehicleService(store repository.Store) *VehicleService {
	return &VehicleService{store: store, now: utcNow}
}

// Propose records a driver's vehicle as pending. It has no driver until an
// admin approves it.
func (s *VehicleService) Propose(ctx context.Context, p models.Principal, in VehicleInput) (*VehicleView, error) {
	if !p.IsDriver() {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		PlateNumber:        strings.TrimSpace(in.PlateNumber),
		Make:               strings.TrimSpace(in.Make),
		Model:              strings.TrimSpace(in.Model),
		Year:               in.Year,
		Capacity:           in.Capacity,
		Status:             models.VehicleActive,
		ProposedByDriverID: p.ID,
		ApprovalStatus:     models.ApprovalPending,
	}
	if err := s.store.Vehicles().Create(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPlateExists
		}
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicle.ID,
		"driver_id":  p.ID,
		"plate":      vehicle.PlateNumber,
	}).Info("vehicle proposed")
	return s.view(ctx, vehicle.ID)
}

func (s *VehicleService) Approve(ctx context.Context, p models.Principal, id uint) (*VehicleView, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	changed, err := s.store.Vehicles().Approve(ctx, id, p.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotFoundOrAlreadyApproved
	}

	logrus.WithFields(logrus.Fields{"vehicle_id": id, "admin_id": p.ID}).Info("vehicle approved")
	return s.view(ctx, id)
}

func (s *VehicleService) Reject(ctx context.Context, p models.Principal, id uint, reason string) (*VehicleView, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	changed, err := s.store.Vehicles().Reject(ctx, id, p.ID, strings.TrimSpace(reason), s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotFoundOrNotPending
	}

	logrus.WithFields(logrus.Fields{"vehicle_id": id, "admin_id": p.ID}).Info("vehicle rejected")
	return s.view(ctx, id)
}

// List applies the role visibility rules: admins see everything, drivers
// see the approved vehicles assigned to them (or every proposal of theirs
// with Mine), passengers see approved vehicles.
func (s *VehicleService) List(ctx context.Context, p models.Principal, q ApprovalQuery) ([]VehicleView, error) {
	var filter repository.VehicleFilter
	switch {
	case p.IsAdmin():
		filter.ApprovalStatus = q.status()
	case p.IsDriver() && q.Mine:
		filter.ProposedBy = &p.ID
	case p.IsDriver():
		filter.DriverID = &p.ID
		filter.ApprovalStatus = approvedOnly()
	default:
		filter.ApprovalStatus = approvedOnly()
	}

	vehicles, err := s.store.Vehicles().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]VehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		views = append(views, vehicleView(v))
	}
	return views, nil
}

// Get hides vehicles the caller may not see behind ErrVehicleNotFound.
func (s *VehicleService) Get(ctx context.Context, p models.Principal, id uint) (*VehicleView, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return view, nil
	}
	if view.Approved && view.DriverID != nil && *view.DriverID == p.ID {
		return view, nil
	}
	return nil, ErrVehicleNotFound
}

func (s *VehicleService) Update(ctx context.Context, p models.Principal, id uint, in VehicleUpdate) (*VehicleView, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, Invalid("status must be one of active, maintenance, inactive")
	}

	vehicle, err := s.store.Vehicles().ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}

	if in.PlateNumber != nil {
		vehicle.PlateNumber = strings.TrimSpace(*in.PlateNumber)
	}
	if in.Make != nil {
		vehicle.Make = *in.Make
	}
	if in.Model != nil {
		vehicle.Model = *in.Model
	}
	if in.Year != nil {
		vehicle.Year = *in.Year
	}
	if in.Capacity != nil {
		vehicle.Capacity = *in.Capacity
	}
	if in.Status != nil {
		vehicle.Status = *in.Status
	}
	if in.DriverID != nil {
		driver, err := s.store.Users().ByID(ctx, *in.DriverID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && driver.Role != models.RoleDriver) {
			return nil, Invalid("driver_id must reference a driver")
		}
		if err != nil {
			return nil, err
		}
		vehicle.DriverID = in.DriverID
	}

	if err := s.store.Vehicles().Update(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPlateExists
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"vehicle_id": id, "admin_id": p.ID}).Info("vehicle updated")
	return s.view(ctx, id)
}

func (s *VehicleService) Delete(ctx context.Context, p models.Principal, id uint) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	deleted, err := s.store.Vehicles().Delete(ctx, id)
	if errors.Is(err, repository.ErrReferenced) {
		return ErrVehicleInUse
	}
	if err != nil {
		return err
	}
	if !deleted {
		return ErrVehicleNotFound
	}
	logrus.WithFields(logrus.Fields{"vehicle_id": id, "admin_id": p.ID}).Info("vehicle deleted")
	return nil
}

// Authorize reports whether p may attach an image to the vehicle: the
// proposing driver or an admin.
func (s *VehicleService) Authorize(ctx context.Context, p models.Principal, id uint) error {
	vehicle, err := s.store.Vehicles().ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVehicleNotFound
	}
	if err != nil {
		return err
	}
	if !p.IsAdmin() && vehicle.ProposedByDriverID != p.ID {
		return ErrForbidden
	}
	return nil
}

func (s *VehicleService) SetImage(ctx context.Context, p models.Principal, id uint, path string) (*VehicleView, error) {
	if err := s.Authorize(ctx, p, id); err != nil {
		return nil, err
	}
	err := s.store.Vehicles().SetImage(ctx, id, path)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, id)
}

func (s *VehicleService) view(ctx context.Context, id uint) (*VehicleView, error) {
	vehicle, err := s.store.Vehicles().ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	view := vehicleView(*vehicle)
	return &view, nil
}
