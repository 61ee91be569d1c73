package domain

import "errors"

var (
	ErrInvalidReservation  = errors.New("invalid_reservation")
	ErrReservationNotFound = errors.New("reservation_not_found")
	ErrAlreadyCheckedIn    = errors.New("already_checked_in")
	ErrNoPassengers        = errors.New("reservation_has_no_passengers")
	ErrMissingOwnerEmail   = errors.New("reservation_owner_email_missing")
)
