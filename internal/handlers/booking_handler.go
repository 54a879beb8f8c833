package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadlink/car-booking-backend/internal/database"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/roadlink/car-booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// BookingHandler serves the booking ledger endpoints. All seat mutation
// goes through the inventory service; this handler never touches seat maps
// directly.
type BookingHandler struct {
	inventory   *services.InventoryService
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(inventory *services.InventoryService, bookingRepo *database.BookingRepository, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		inventory:   inventory,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// CreateBooking reserves seats for a new booking
// POST /api/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	booking, err := h.inventory.Reserve(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking successful",
		"booking": booking,
	})
}

// ListBookings returns all bookings with their trip summary
// GET /api/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingRepo.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking returns a booking by id
// GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch booking")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch booking"})
		return
	}
	if booking == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBookingsByTrip returns the bookings for a trip on a travel date
// GET /api/bookings/trip/:tripId?date=2025-01-15
func (h *BookingHandler) GetBookingsByTrip(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing date parameter"})
		return
	}

	bookings, err := h.bookingRepo.GetByTripAndDate(c.Param("tripId"), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch bookings for trip")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// UpdateBooking replaces contact info and/or the passenger list wholesale.
// Seat assignments are not re-validated against the trip's seat map.
// PUT /api/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	booking, err := h.bookingRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch booking for update")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch booking"})
		return
	}
	if booking == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}

	if req.ContactInfo != nil {
		booking.ContactInfo = *req.ContactInfo
	}
	if req.Passengers != nil {
		booking.Passengers = req.Passengers
	}

	if err := h.bookingRepo.UpdateContactAndPassengers(booking); err != nil {
		h.logger.WithError(err).Error("Failed to update booking")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking updated successfully",
		"booking": booking,
	})
}

// CancelBooking cancels a booking and restores its seats
// PUT /api/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	result, err := h.inventory.Release(c.Request.Context(), c.Param("id"), models.ReleaseModeCancel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled and seat(s) restored",
		"result":  result,
	})
}

// DeleteBooking removes a booking and restores its seats
// DELETE /api/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	result, err := h.inventory.Release(c.Request.Context(), c.Param("id"), models.ReleaseModeDelete)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking deleted and seats restored",
		"result":  result,
	})
}
