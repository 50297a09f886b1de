package application

import "errors"

// Messages are shown to end users as-is.
var (
	ErrUserNotFound           = errors.New("user does not exist")
	ErrInvalidCredentials     = errors.New("wrong password")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")

	ErrRentalNotFound  = errors.New("rental not found")
	ErrSlotTaken       = errors.New("this time slot is already booked")
	ErrDatetimeInPast  = errors.New("reservation time must be in the future")
	ErrInvalidDatetime = errors.New("invalid reservation date and time")
)
