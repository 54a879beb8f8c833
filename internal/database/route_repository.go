package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/roadlink/car-booking-backend/internal/models"
)

const routeColumns = `id, origin, destination, departure_time, vehicle_number,
	   is_active, created_at, updated_at`

// RouteRepository handles database operations for the template_routes table
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create persists a new template route
func (r *RouteRepository) Create(route *models.TemplateRoute) error {
	query := `
		INSERT INTO template_routes (id, origin, destination, departure_time, vehicle_number, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	if route.ID == "" {
		route.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		route.ID, route.Origin, route.Destination, route.DepartureTime,
		route.VehicleNumber, route.IsActive,
	).Scan(&route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template route: %w", err)
	}

	return nil
}

// GetByID retrieves a template route by ID, or nil when it does not exist
func (r *RouteRepository) GetByID(routeID string) (*models.TemplateRoute, error) {
	query := `SELECT ` + routeColumns + ` FROM template_routes WHERE id = $1`

	var route models.TemplateRoute
	err := r.db.Get(&route, query, routeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template route: %w", err)
	}

	return &route, nil
}

// List retrieves all template routes
func (r *RouteRepository) List() ([]models.TemplateRoute, error) {
	query := `SELECT ` + routeColumns + ` FROM template_routes ORDER BY created_at`

	routes := []models.TemplateRoute{}
	if err := r.db.Select(&routes, query); err != nil {
		return nil, fmt.Errorf("failed to list template routes: %w", err)
	}

	return routes, nil
}

// ListActive retrieves the template routes eligible for trip generation
func (r *RouteRepository) ListActive() ([]models.TemplateRoute, error) {
	query := `SELECT ` + routeColumns + ` FROM template_routes WHERE is_active ORDER BY created_at`

	routes := []models.TemplateRoute{}
	if err := r.db.Select(&routes, query); err != nil {
		return nil, fmt.Errorf("failed to list active template routes: %w", err)
	}

	return routes, nil
}

// Update replaces the mutable fields of a template route
func (r *RouteRepository) Update(route *models.TemplateRoute) error {
	query := `
		UPDATE template_routes
		SET origin = $2, destination = $3, departure_time = $4,
			vehicle_number = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		route.ID, route.Origin, route.Destination, route.DepartureTime,
		route.VehicleNumber, route.IsActive,
	).Scan(&route.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update template route: %w", err)
	}

	return nil
}

// Delete removes a template route. Returns false when it did not exist.
func (r *RouteRepository) Delete(routeID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM template_routes WHERE id = $1`, routeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete template route: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rows > 0, nil
}
