package services

import "errors"

// Kind classifies a domain error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvariant
)

// Error is the error type every service operation fails with when the
// failure is the caller's fault. Two Errors match under errors.Is when
// their codes are equal, so Invalid("...") still matches ErrValidation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrValidation = newError(KindValidation, "VALIDATION_ERROR", "invalid request")

	ErrInvalidRole        = newError(KindValidation, "INVALID_ROLE", "role must be one of admin, driver, passenger")
	ErrDuplicateEmail     = newError(KindConflict, "DUPLICATE_EMAIL", "email is already registered")
	ErrInvalidCredentials = newError(KindUnauthenticated, "INVALID_CREDENTIALS", "invalid email or password")
	ErrUnauthenticated    = newError(KindUnauthenticated, "UNAUTHENTICATED", "access token required")
	ErrInvalidToken       = newError(KindUnauthenticated, "INVALID_TOKEN", "invalid or expired token")
	ErrForbidden          = newError(KindForbidden, "INSUFFICIENT_PERMISSIONS", "insufficient permissions")
	ErrUserNotFound       = newError(KindNotFound, "USER_NOT_FOUND", "user not found")

	ErrVehicleNotFound           = newError(KindNotFound, "VEHICLE_NOT_FOUND", "vehicle not found")
	ErrRouteNotFound             = newError(KindNotFound, "ROUTE_NOT_FOUND", "route not found")
	ErrNotFoundOrAlreadyApproved = newError(KindNotFound, "NOT_FOUND_OR_ALREADY_APPROVED", "not found or already approved")
	ErrNotFoundOrNotPending      = newError(KindNotFound, "NOT_FOUND_OR_NOT_PENDING", "not found or no longer pending")
	ErrPlateExists               = newError(KindConflict, "PLATE_EXISTS", "a vehicle with this plate number already exists")
	ErrVehicleInUse              = newError(KindConflict, "VEHICLE_IN_USE", "vehicle is referenced by trips")

	ErrRouteNotApproved = newError(KindInvariant, "ROUTE_NOT_APPROVED", "route is not approved")
	ErrVehicleNotOwned  = newError(KindForbidden, "VEHICLE_NOT_OWNED", "vehicle is not assigned to you")
	ErrTripNotFound     = newError(KindNotFound, "TRIP_NOT_FOUND", "trip not found")
	ErrInvalidStatus    = newError(KindValidation, "INVALID_STATUS", "status must be one of scheduled, on_route, completed, cancelled")
	ErrTripNotOnRoute   = newError(KindInvariant, "TRIP_NOT_ON_ROUTE", "trip is not on route")
	ErrTripNotBookable  = newError(KindInvariant, "TRIP_NOT_BOOKABLE", "trip is not open for booking")

	ErrNoSeatsAvailable   = newError(KindInvariant, "NO_SEATS_AVAILABLE", "no seats available")
	ErrSeatAlreadyBooked  = newError(KindConflict, "SEAT_ALREADY_BOOKED", "seat is already booked")
	ErrNotFoundOrNotOwner = newError(KindNotFound, "NOT_FOUND_OR_NOT_OWNER", "booking not found")
	ErrAlreadyCancelled   = newError(KindInvariant, "ALREADY_CANCELLED", "booking is already cancelled")
)

// Invalid is a validation failure with a specific message.
func Invalid(msg string) *Error {
	return newError(KindValidation, ErrValidation.Code, msg)
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
