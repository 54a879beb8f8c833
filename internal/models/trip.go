package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SeatClass is the fare category of a seat
type SeatClass string

const (
	SeatClassFront SeatClass = "front"
	SeatClassRear  SeatClass = "rear"
)

// IsValid reports whether the seat class is one of the known values
func (c SeatClass) IsValid() bool {
	return c == SeatClassFront || c == SeatClassRear
}

// Seat represents one physical seat on a trip
type Seat struct {
	SeatNumber string    `json:"seatNumber"`
	SeatClass  SeatClass `json:"seatClass"`
	IsBooked   bool      `json:"isBooked"`
}

// SeatMap is the ordered seat inventory of a trip, stored as JSONB
type SeatMap []Seat

// Value implements the driver.Valuer interface
func (m SeatMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *SeatMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported seat_map source type %T", src)
	}
	return json.Unmarshal(data, m)
}

// Find returns the seat with the given number and class, or nil
func (m SeatMap) Find(seatNumber string, class SeatClass) *Seat {
	for i := range m {
		if m[i].SeatNumber == seatNumber && m[i].SeatClass == class {
			return &m[i]
		}
	}
	return nil
}

// Available returns the unbooked seats in seat-map order
func (m SeatMap) Available() SeatMap {
	available := make(SeatMap, 0, len(m))
	for _, seat := range m {
		if !seat.IsBooked {
			available = append(available, seat)
		}
	}
	return available
}

// CountAvailable returns the number of unbooked seats
func (m SeatMap) CountAvailable() int {
	count := 0
	for _, seat := range m {
		if !seat.IsBooked {
			count++
		}
	}
	return count
}

// Clone returns a deep copy so validation and mutation can work on a
// snapshot without touching the loaded record
func (m SeatMap) Clone() SeatMap {
	if m == nil {
		return nil
	}
	clone := make(SeatMap, len(m))
	copy(clone, m)
	return clone
}

// DefaultSeatMap generates the standard seat layout: seat "1" is the front
// seat, the rest are rear seats, all unbooked.
func DefaultSeatMap(totalSeats int) SeatMap {
	seatMap := make(SeatMap, 0, totalSeats)
	for i := 1; i <= totalSeats; i++ {
		class := SeatClassRear
		if i == 1 {
			class = SeatClassFront
		}
		seatMap = append(seatMap, Seat{
			SeatNumber: strconv.Itoa(i),
			SeatClass:  class,
			IsBooked:   false,
		})
	}
	return seatMap
}

// PriceTable holds the per-class seat prices of a trip, stored as JSONB
type PriceTable struct {
	Front float64 `json:"front"`
	Rear  float64 `json:"rear"`
}

// Value implements the driver.Valuer interface
func (p PriceTable) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface
func (p *PriceTable) Scan(src interface{}) error {
	if src == nil {
		*p = PriceTable{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported price source type %T", src)
	}
	return json.Unmarshal(data, p)
}

// For returns the price for a seat class
func (p PriceTable) For(class SeatClass) float64 {
	if class == SeatClassFront {
		return p.Front
	}
	return p.Rear
}

// Trip represents a scheduled vehicle run on a specific date with a fixed
// seat inventory and price table. Version is the optimistic-concurrency
// token: every committed seat-map mutation increments it.
type Trip struct {
	ID             string     `json:"id" db:"id"`
	Origin         string     `json:"origin" db:"origin"`
	Destination    string     `json:"destination" db:"destination"`
	TripDate       time.Time  `json:"date" db:"trip_date"`
	DepartureTime  string     `json:"time" db:"departure_time"`
	VehicleNumber  string     `json:"vehicleId" db:"vehicle_number"`
	TotalSeats     int        `json:"totalSeats" db:"total_seats"`
	AvailableSeats int        `json:"seatsAvailable" db:"available_seats"`
	Price          PriceTable `json:"price" db:"price"`
	SeatMap        SeatMap    `json:"seatMap" db:"seat_map"`
	Version        int        `json:"-" db:"version"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// CreateTripRequest is the payload for creating a single trip
type CreateTripRequest struct {
	Origin        string     `json:"origin" binding:"required"`
	Destination   string     `json:"destination" binding:"required"`
	DepartureTime string     `json:"time" binding:"required"`
	Date          string     `json:"date"`
	VehicleNumber string     `json:"vehicleId" binding:"required"`
	TotalSeats    int        `json:"totalSeats"`
	Price         PriceTable `json:"price"`
	SeatMap       SeatMap    `json:"seatMap"`
}

// Validate checks the request and resolves defaults
func (r *CreateTripRequest) Validate() error {
	if r.Date == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	if r.TotalSeats == 0 {
		r.TotalSeats = DefaultTotalSeats
	}
	if r.TotalSeats < 0 {
		return errors.New("totalSeats must be positive")
	}
	return nil
}

// ParsedDate returns the travel date as a time.Time. Validate must have
// passed first.
func (r *CreateTripRequest) ParsedDate() time.Time {
	date, _ := time.Parse("2006-01-02", r.Date)
	return date
}

// ToTrip builds a Trip from the request. A supplied seat map is used only
// when it covers exactly TotalSeats entries; otherwise the default layout
// is generated.
func (r *CreateTripRequest) ToTrip() *Trip {
	seatMap := r.SeatMap
	if len(seatMap) != r.TotalSeats {
		seatMap = DefaultSeatMap(r.TotalSeats)
	}

	return &Trip{
		Origin:         r.Origin,
		Destination:    r.Destination,
		TripDate:       r.ParsedDate(),
		DepartureTime:  r.DepartureTime,
		VehicleNumber:  r.VehicleNumber,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.TotalSeats,
		Price:          r.Price,
		SeatMap:        seatMap,
	}
}

// DefaultTotalSeats is the seat count used when a trip is created without one
const DefaultTotalSeats = 6

// TripFilter narrows trip listing. Date matches the full calendar day.
type TripFilter struct {
	Date        string
	Origin      string
	Destination string
	Time        string
}
