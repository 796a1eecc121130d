package service

import "errors"

var (
	// ErrRiderNotFound is returned when the requesting rider does not exist.
	ErrRiderNotFound = errors.New("rider not found")

	// ErrDriverNotFound is returned when the accepting driver does not exist.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrRideNotFound is returned when a ride id matches nothing.
	ErrRideNotFound = errors.New("ride not found")

	// ErrUserNotFound is returned when a user id or email matches nothing.
	ErrUserNotFound = errors.New("user not found")

	// ErrRideAlreadyAccepted is returned when accepting a ride that is no
	// longer in the requested state.
	ErrRideAlreadyAccepted = errors.New("ride already accepted")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidStatus is returned when a status override is empty.
	ErrInvalidStatus = errors.New("invalid ride status")

	// ErrInvalidEmail is returned when a registration has no email.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidUsername is returned when a registration has no username.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidRole is returned when a registration has an unknown role.
	ErrInvalidRole = errors.New("invalid user role")

	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
)
