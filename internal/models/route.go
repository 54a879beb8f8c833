package models

import (
	"errors"
	"time"
)

// TemplateRoute is a recurring route definition used by the trip generator.
// Each active template produces one trip per day in the generation window.
type TemplateRoute struct {
	ID            string    `json:"id" db:"id"`
	Origin        string    `json:"origin" db:"origin"`
	Destination   string    `json:"destination" db:"destination"`
	DepartureTime string    `json:"time" db:"departure_time"`
	VehicleNumber string    `json:"vehicleId" db:"vehicle_number"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateTemplateRouteRequest is the payload for creating a template route
type CreateTemplateRouteRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"time"`
	VehicleNumber string `json:"vehicleId"`
}

// Validate checks that all fields are present
func (r *CreateTemplateRouteRequest) Validate() error {
	if r.Origin == "" || r.Destination == "" || r.DepartureTime == "" || r.VehicleNumber == "" {
		return errors.New("origin, destination, time and vehicleId are required")
	}
	return nil
}

// GenerateTripsRequest controls the generation window. Defaults: start
// today, 7 days.
type GenerateTripsRequest struct {
	StartDate string `json:"startDate"`
	Days      int    `json:"days"`
}
