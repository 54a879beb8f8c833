package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadlink/car-booking-backend/internal/database"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/roadlink/car-booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// PaymentHandler drives the pay-then-book flow: an order is created for the
// requested seats, the client pays it at the gateway, and the verified
// callback commits the booking draft.
type PaymentHandler struct {
	payments  *services.PaymentService
	inventory *services.InventoryService
	tripRepo  *database.TripRepository
	logger    *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *services.PaymentService, inventory *services.InventoryService, tripRepo *database.TripRepository, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		inventory: inventory,
		tripRepo:  tripRepo,
		logger:    logger,
	}
}

// CreateOrder prices the requested seats from the trip's price table and
// registers a gateway order for the total
// POST /api/payment/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	trip, err := h.tripRepo.GetByID(req.TripID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch trip for order")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
		return
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Trip not found"})
		return
	}

	var total float64
	for _, p := range req.Passengers {
		total += trip.Price.For(p.SeatClass)
	}

	// Gateway amounts are in paise
	order, err := h.payments.CreateOrder(int64(total*100), services.OrderReceipt())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// VerifyPayment checks the gateway signature and, when valid, commits the
// booking draft with the payment receipt attached
// POST /api/payment/verify-payment
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		respondError(c, err)
		return
	}

	receipt := models.PaymentReceipt{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	}

	booking, err := h.inventory.ConfirmWithPayment(c.Request.Context(), receipt, &req.BookingDraft)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment verified and booking confirmed",
		"booking": booking,
	})
}
