package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RunMigrations creates the schema if it does not exist yet
func RunMigrations(db *sqlx.DB) error {
	migrations := []string{
		createTripsTable,
		createBookingsTable,
		createTemplateRoutesTable,
		createTripsLookupIndex,
		createBookingsTripIndex,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const createTripsTable = `
CREATE TABLE IF NOT EXISTS trips (
    id VARCHAR(36) PRIMARY KEY,
    origin VARCHAR(255) NOT NULL,
    destination VARCHAR(255) NOT NULL,
    trip_date DATE NOT NULL,
    departure_time VARCHAR(20) NOT NULL,
    vehicle_number VARCHAR(50) NOT NULL,
    total_seats INTEGER NOT NULL,
    available_seats INTEGER NOT NULL,
    price JSONB NOT NULL,
    seat_map JSONB NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id VARCHAR(36) PRIMARY KEY,
    trip_id VARCHAR(36) NOT NULL REFERENCES trips(id),
    vehicle_number VARCHAR(50) NOT NULL,
    travel_date VARCHAR(10) NOT NULL,
    contact_info JSONB NOT NULL,
    passengers JSONB NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
    payment JSONB,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createTemplateRoutesTable = `
CREATE TABLE IF NOT EXISTS template_routes (
    id VARCHAR(36) PRIMARY KEY,
    origin VARCHAR(255) NOT NULL,
    destination VARCHAR(255) NOT NULL,
    departure_time VARCHAR(20) NOT NULL,
    vehicle_number VARCHAR(50) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createTripsLookupIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_trips_template_key
    ON trips (origin, destination, departure_time, vehicle_number, trip_date);`

const createBookingsTripIndex = `
CREATE INDEX IF NOT EXISTS idx_bookings_trip_date
    ON bookings (trip_id, travel_date);`
