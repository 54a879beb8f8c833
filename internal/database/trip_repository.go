package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/roadlink/car-booking-backend/internal/apperrors"
	"github.com/roadlink/car-booking-backend/internal/models"
)

const tripColumns = `id, origin, destination, trip_date, departure_time, vehicle_number,
	   total_seats, available_seats, price, seat_map, version, created_at, updated_at`

// TripRepository handles database operations for the trips table
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create persists a new trip
func (r *TripRepository) Create(trip *models.Trip) error {
	query := `
		INSERT INTO trips (
			id, origin, destination, trip_date, departure_time, vehicle_number,
			total_seats, available_seats, price, seat_map, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		RETURNING version, created_at, updated_at
	`

	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		trip.ID, trip.Origin, trip.Destination, trip.TripDate, trip.DepartureTime,
		trip.VehicleNumber, trip.TotalSeats, trip.AvailableSeats, trip.Price, trip.SeatMap,
	).Scan(&trip.Version, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	return nil
}

// GetByID retrieves a trip by ID, or nil when it does not exist
func (r *TripRepository) GetByID(tripID string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	var trip models.Trip
	err := r.db.Get(&trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}

// Find retrieves all trips matching the supplied filters. The date filter
// matches the full calendar day.
func (r *TripRepository) Find(filter models.TripFilter) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips`

	conditions := []string{}
	args := []interface{}{}

	if filter.Date != "" {
		args = append(args, filter.Date)
		conditions = append(conditions, `trip_date = $`+strconv.Itoa(len(args)))
	}
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		conditions = append(conditions, `origin = $`+strconv.Itoa(len(args)))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		conditions = append(conditions, `destination = $`+strconv.Itoa(len(args)))
	}
	if filter.Time != "" {
		args = append(args, filter.Time)
		conditions = append(conditions, `departure_time = $`+strconv.Itoa(len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY trip_date, departure_time"

	trips := []models.Trip{}
	if err := r.db.Select(&trips, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find trips: %w", err)
	}

	return trips, nil
}

// ExistsForTemplate reports whether a trip with the given template key
// already exists. The generator uses it for idempotency.
func (r *TripRepository) ExistsForTemplate(origin, destination, departureTime, vehicleNumber string, date time.Time) (bool, error) {
	query := `
		SELECT COUNT(1) FROM trips
		WHERE origin = $1 AND destination = $2 AND departure_time = $3
		  AND vehicle_number = $4 AND trip_date = $5
	`

	var count int
	if err := r.db.Get(&count, query, origin, destination, departureTime, vehicleNumber, date); err != nil {
		return false, fmt.Errorf("failed to check existing trip: %w", err)
	}

	return count > 0, nil
}

// CommitReservation applies a seat-map mutation and the new booking as one
// atomic unit. The trip update is guarded by the version the seat validation
// ran against; if another transaction moved the trip on since that snapshot,
// nothing is written and apperrors.ErrVersionConflict is returned so the
// caller can re-validate and retry.
func (r *TripRepository) CommitReservation(trip *models.Trip, expectedVersion int, booking *models.Booking) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.updateTripGuarded(tx, trip, expectedVersion); err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (
			id, trip_id, vehicle_number, travel_date, contact_info, passengers, status, payment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(
		query,
		booking.ID, booking.TripID, booking.VehicleNumber, booking.TravelDate,
		booking.ContactInfo, booking.Passengers, booking.Status, booking.Payment,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return tx.Commit()
}

// CommitRelease frees the booking's seats and flips (or removes) the booking
// record in one atomic unit, with the same version guard as reservations.
// A nil trip skips the seat update; the booking mutation still commits.
func (r *TripRepository) CommitRelease(trip *models.Trip, expectedVersion int, booking *models.Booking, remove bool) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if trip != nil {
		if err := r.updateTripGuarded(tx, trip, expectedVersion); err != nil {
			return err
		}
	}

	if remove {
		if _, err := tx.Exec(`DELETE FROM bookings WHERE id = $1`, booking.ID); err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
	} else {
		_, err := tx.Exec(
			`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`,
			booking.ID, booking.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
	}

	return tx.Commit()
}

// updateTripGuarded writes the trip's seat map and counter under the
// optimistic version guard
func (r *TripRepository) updateTripGuarded(tx *sqlx.Tx, trip *models.Trip, expectedVersion int) error {
	result, err := tx.Exec(`
		UPDATE trips
		SET seat_map = $2, available_seats = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $4
	`, trip.ID, trip.SeatMap, trip.AvailableSeats, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrVersionConflict
	}

	return nil
}
