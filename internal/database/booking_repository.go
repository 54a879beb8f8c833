package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/roadlink/car-booking-backend/internal/models"
)

const bookingColumns = `id, trip_id, vehicle_number, travel_date, contact_info,
	   passengers, status, payment, created_at, updated_at`

// BookingRepository handles database operations for the bookings table.
// Creation and seat-releasing mutations go through TripRepository's
// transactional commit methods; this repository covers reads and the
// non-seat edits.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByID retrieves a booking by ID, or nil when it does not exist
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking models.Booking
	err := r.db.Get(&booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// List retrieves all bookings joined with a summary of their trip
func (r *BookingRepository) List() ([]models.BookingWithTrip, error) {
	query := `
		SELECT b.id, b.trip_id, b.vehicle_number, b.travel_date, b.contact_info,
			   b.passengers, b.status, b.payment, b.created_at, b.updated_at,
			   t.id AS trip_pk, t.origin, t.destination, t.trip_date,
			   t.departure_time, t.vehicle_number AS trip_vehicle_number
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.BookingWithTrip{}
	for rows.Next() {
		var b models.BookingWithTrip
		var trip models.TripSummary
		err := rows.Scan(
			&b.ID, &b.TripID, &b.VehicleNumber, &b.TravelDate, &b.ContactInfo,
			&b.Passengers, &b.Status, &b.Payment, &b.CreatedAt, &b.UpdatedAt,
			&trip.ID, &trip.Origin, &trip.Destination, &trip.TripDate,
			&trip.DepartureTime, &trip.VehicleNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Trip = &trip
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// GetByTripAndDate retrieves the bookings for a trip on a travel date
func (r *BookingRepository) GetByTripAndDate(tripID, travelDate string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = $1 AND travel_date = $2
		ORDER BY created_at
	`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, tripID, travelDate); err != nil {
		return nil, fmt.Errorf("failed to get bookings for trip: %w", err)
	}

	return bookings, nil
}

// UpdateContactAndPassengers replaces contact info and/or the passenger
// list wholesale. Seat assignments are not re-validated against the trip.
func (r *BookingRepository) UpdateContactAndPassengers(booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET contact_info = $2, passengers = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query, booking.ID, booking.ContactInfo, booking.Passengers).
		Scan(&booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}
