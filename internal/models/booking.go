package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ContactInfo holds the customer contact details for a booking
type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Value implements the driver.Valuer interface
func (c ContactInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface
func (c *ContactInfo) Scan(src interface{}) error {
	if src == nil {
		*c = ContactInfo{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported contact_info source type %T", src)
	}
	return json.Unmarshal(data, c)
}

// Passenger is one traveller on a booking with their assigned seat and the
// price locked in at booking time
type Passenger struct {
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	SeatClass  SeatClass `json:"seatClass"`
	SeatNumber string    `json:"seatNumber"`
	Price      float64   `json:"price"`
}

// PassengerList is the passenger roster of a booking, stored as JSONB
type PassengerList []Passenger

// Value implements the driver.Valuer interface
func (l PassengerList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *PassengerList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported passengers source type %T", src)
	}
	return json.Unmarshal(data, l)
}

// PaymentReceipt holds the gateway references attached to a paid booking
type PaymentReceipt struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// Value implements the driver.Valuer interface
func (p PaymentReceipt) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface
func (p *PaymentReceipt) Scan(src interface{}) error {
	if src == nil {
		*p = PaymentReceipt{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported payment source type %T", src)
	}
	return json.Unmarshal(data, p)
}

// Booking represents a customer's reservation of one or more seats on one
// trip. VehicleNumber and TravelDate are denormalized from the trip at
// booking time.
type Booking struct {
	ID            string          `json:"id" db:"id"`
	TripID        string          `json:"tripId" db:"trip_id"`
	VehicleNumber string          `json:"vehicleId" db:"vehicle_number"`
	TravelDate    string          `json:"date" db:"travel_date"`
	ContactInfo   ContactInfo     `json:"contactInfo" db:"contact_info"`
	Passengers    PassengerList   `json:"passengers" db:"passengers"`
	Status        BookingStatus   `json:"status" db:"status"`
	Payment       *PaymentReceipt `json:"payment,omitempty" db:"payment"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// BookingWithTrip pairs a booking with a summary of its trip for listings
type BookingWithTrip struct {
	Booking
	Trip *TripSummary `json:"trip,omitempty"`
}

// TripSummary is the subset of trip fields joined into booking listings
type TripSummary struct {
	ID            string    `json:"id" db:"id"`
	Origin        string    `json:"origin" db:"origin"`
	Destination   string    `json:"destination" db:"destination"`
	TripDate      time.Time `json:"date" db:"trip_date"`
	DepartureTime string    `json:"time" db:"departure_time"`
	VehicleNumber string    `json:"vehicleId" db:"vehicle_number"`
}

// PassengerSeatRequest is one requested seat assignment in a reservation
type PassengerSeatRequest struct {
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	SeatClass  SeatClass `json:"seatClass"`
	SeatNumber string    `json:"seatNumber"`
}

// CreateBookingRequest is the reservation payload
type CreateBookingRequest struct {
	TripID       string                 `json:"tripId" binding:"required"`
	ContactName  string                 `json:"contactName"`
	ContactPhone string                 `json:"contactPhone"`
	ContactEmail string                 `json:"contactEmail"`
	Date         string                 `json:"date"`
	Passengers   []PassengerSeatRequest `json:"passengers"`
}

// UpdateBookingRequest replaces contact info and/or the passenger list
// wholesale. Seat assignments are NOT re-validated against the trip's seat
// map; an edit can desynchronize the seat map from the roster.
type UpdateBookingRequest struct {
	ContactInfo *ContactInfo  `json:"contactInfo,omitempty"`
	Passengers  PassengerList `json:"passengers,omitempty"`
}

// ReleaseMode selects how seats are freed from a booking
type ReleaseMode string

const (
	ReleaseModeCancel ReleaseMode = "cancel"
	ReleaseModeDelete ReleaseMode = "delete"
)

// ReleaseResult reports the outcome of a cancel or delete
type ReleaseResult struct {
	BookingID     string      `json:"bookingId"`
	Mode          ReleaseMode `json:"mode"`
	SeatsReleased int         `json:"seatsReleased"`
}

// VerifyPaymentRequest carries the gateway callback fields plus the booking
// draft to commit once the signature checks out
type VerifyPaymentRequest struct {
	OrderID      string               `json:"orderId" binding:"required"`
	PaymentID    string               `json:"paymentId" binding:"required"`
	Signature    string               `json:"signature" binding:"required"`
	BookingDraft CreateBookingRequest `json:"bookingDraft"`
}

// CreateOrderRequest asks the payment gateway for an order covering the
// requested seats on a trip
type CreateOrderRequest struct {
	TripID     string                 `json:"tripId" binding:"required"`
	Passengers []PassengerSeatRequest `json:"passengers" binding:"required"`
}
