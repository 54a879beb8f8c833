package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roadlink/car-booking-backend/internal/cache"
	"github.com/roadlink/car-booking-backend/internal/database"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/roadlink/car-booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// TripHandler serves the trip catalog endpoints
type TripHandler struct {
	tripRepo  *database.TripRepository
	generator *services.GeneratorService
	seatCache *cache.SeatCache
	logger    *logrus.Logger
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(tripRepo *database.TripRepository, generator *services.GeneratorService, seatCache *cache.SeatCache, logger *logrus.Logger) *TripHandler {
	return &TripHandler{
		tripRepo:  tripRepo,
		generator: generator,
		seatCache: seatCache,
		logger:    logger,
	}
}

// CreateTrip creates a single trip
// POST /api/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	trip := req.ToTrip()
	if err := h.tripRepo.Create(trip); err != nil {
		h.logger.WithError(err).Error("Failed to create trip")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create trip"})
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// ListTrips returns all trips matching the supplied filters
// GET /api/trips?date=2025-01-15&origin=Ballia&destination=Lucknow&time=08:00
func (h *TripHandler) ListTrips(c *gin.Context) {
	filter := models.TripFilter{
		Date:        c.Query("date"),
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Time:        c.Query("time"),
	}

	if filter.Date != "" {
		if _, err := time.Parse("2006-01-02", filter.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
	}

	trips, err := h.tripRepo.Find(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list trips")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

// GetTrip returns a trip by id
// GET /api/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch trip")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch trip"})
		return
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Trip not found"})
		return
	}

	c.JSON(http.StatusOK, trip)
}

// AvailableSeats returns the unbooked subset of a trip's seat map, in
// seat-map order, served through the seat cache
// GET /api/trips/:id/available-seats
func (h *TripHandler) AvailableSeats(c *gin.Context) {
	tripID := c.Param("id")

	if seats, ok := h.seatCache.GetAvailableSeats(c.Request.Context(), tripID); ok {
		c.JSON(http.StatusOK, seats)
		return
	}

	trip, err := h.tripRepo.GetByID(tripID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch trip for seat availability")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch trip"})
		return
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Trip not found"})
		return
	}

	seats := trip.SeatMap.Available()
	h.seatCache.SetAvailableSeats(c.Request.Context(), tripID, seats)

	c.JSON(http.StatusOK, seats)
}

// GenerateTrips runs a generation window over the active template routes
// POST /api/trips/generate
func (h *TripHandler) GenerateTrips(c *gin.Context) {
	var req models.GenerateTripsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	startDate := time.Now()
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid startDate format. Use YYYY-MM-DD"})
			return
		}
		startDate = parsed
	}

	created, err := h.generator.GenerateFromActiveRoutes(startDate, req.Days)
	if err != nil {
		h.logger.WithError(err).Error("Trip generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while generating trips"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trips generated successfully",
		"created": created,
	})
}
