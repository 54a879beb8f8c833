// Package apperrors defines the error taxonomy shared by the booking core.
// Every user-visible failure carries a kind plus the offending identifier so
// handlers can map it to a status code without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind string

const (
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindInvalidSeat         Kind = "invalid_seat"
	KindSeatUnavailable     Kind = "seat_unavailable"
	KindAlreadyCancelled    Kind = "already_cancelled"
	KindPaymentVerification Kind = "payment_verification"
	KindConflict            Kind = "conflict"
)

// ErrVersionConflict signals that a trip was modified concurrently between
// snapshot and commit. The engine retries on it; it is never surfaced to
// callers directly.
var ErrVersionConflict = errors.New("trip version conflict")

// Error is a classified failure with the identifier that caused it
type Error struct {
	Kind    Kind
	Message string
	Seat    string // offending seat number, when applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Validation reports malformed or missing input
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unresolvable trip or booking id
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// InvalidSeat reports a seat number/class pair that is not in the trip's
// seat map
func InvalidSeat(seatNumber string) *Error {
	return &Error{
		Kind:    KindInvalidSeat,
		Message: fmt.Sprintf("seat %s does not exist", seatNumber),
		Seat:    seatNumber,
	}
}

// SeatUnavailable reports a seat already held by another confirmed booking
func SeatUnavailable(seatNumber string) *Error {
	return &Error{
		Kind:    KindSeatUnavailable,
		Message: fmt.Sprintf("seat %s is already booked", seatNumber),
		Seat:    seatNumber,
	}
}

// AlreadyCancelled reports a repeated cancellation
func AlreadyCancelled(bookingID string) *Error {
	return &Error{
		Kind:    KindAlreadyCancelled,
		Message: fmt.Sprintf("booking %s is already cancelled", bookingID),
	}
}

// PaymentVerification reports a payment signature mismatch
func PaymentVerification() *Error {
	return &Error{Kind: KindPaymentVerification, Message: "payment verification failed"}
}

// Conflict reports optimistic-concurrency retry exhaustion; callers may retry
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a classified error, or "" for plain errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
