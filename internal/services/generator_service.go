package services

import (
	"time"

	"github.com/roadlink/car-booking-backend/internal/config"
	"github.com/roadlink/car-booking-backend/internal/metrics"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// GeneratorTripStore is the trip persistence the generator needs
type GeneratorTripStore interface {
	ExistsForTemplate(origin, destination, departureTime, vehicleNumber string, date time.Time) (bool, error)
	Create(trip *models.Trip) error
}

// TemplateRouteStore supplies the route templates to generate trips from
type TemplateRouteStore interface {
	ListActive() ([]models.TemplateRoute, error)
}

// GeneratorService produces recurring trips from route templates. Generation
// is idempotent: a trip is only created when no trip with the same
// (origin, destination, time, vehicle, date) exists yet, so re-running a
// window never duplicates.
type GeneratorService struct {
	trips  GeneratorTripStore
	routes TemplateRouteStore
	config config.GeneratorConfig
	logger *logrus.Logger
}

// NewGeneratorService creates a new GeneratorService
func NewGeneratorService(trips GeneratorTripStore, routes TemplateRouteStore, cfg config.GeneratorConfig, logger *logrus.Logger) *GeneratorService {
	return &GeneratorService{
		trips:  trips,
		routes: routes,
		config: cfg,
		logger: logger,
	}
}

// GenerateForWindow creates one trip per template route per day in
// [startDate, startDate+numberOfDays). Returns the number of newly created
// trips.
func (s *GeneratorService) GenerateForWindow(templateRoutes []models.TemplateRoute, startDate time.Time, numberOfDays int) (int, error) {
	created := 0
	day := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)

	for i := 0; i < numberOfDays; i++ {
		date := day.AddDate(0, 0, i)

		for _, route := range templateRoutes {
			exists, err := s.trips.ExistsForTemplate(
				route.Origin, route.Destination, route.DepartureTime, route.VehicleNumber, date,
			)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}

			trip := &models.Trip{
				Origin:         route.Origin,
				Destination:    route.Destination,
				TripDate:       date,
				DepartureTime:  route.DepartureTime,
				VehicleNumber:  route.VehicleNumber,
				TotalSeats:     models.DefaultTotalSeats,
				AvailableSeats: models.DefaultTotalSeats,
				Price: models.PriceTable{
					Front: s.config.FrontPrice,
					Rear:  s.config.RearPrice,
				},
				SeatMap: models.DefaultSeatMap(models.DefaultTotalSeats),
			}

			if err := s.trips.Create(trip); err != nil {
				// One failed date should not sink the rest of the window
				s.logger.WithError(err).WithFields(logrus.Fields{
					"origin":      route.Origin,
					"destination": route.Destination,
					"date":        date.Format("2006-01-02"),
				}).Error("Failed to create generated trip")
				continue
			}

			created++
			metrics.TripsGenerated.Inc()
		}
	}

	s.logger.WithFields(logrus.Fields{
		"start_date": day.Format("2006-01-02"),
		"days":       numberOfDays,
		"created":    created,
	}).Info("Trip generation window completed")

	return created, nil
}

// GenerateFromActiveRoutes runs a generation window over the active
// template routes
func (s *GeneratorService) GenerateFromActiveRoutes(startDate time.Time, numberOfDays int) (int, error) {
	routes, err := s.routes.ListActive()
	if err != nil {
		return 0, err
	}
	if numberOfDays <= 0 {
		numberOfDays = s.config.DaysAhead
	}

	return s.GenerateForWindow(routes, startDate, numberOfDays)
}
