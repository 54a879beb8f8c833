package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadlink/car-booking-backend/internal/database"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// RouteHandler manages the template routes the trip generator runs on
type RouteHandler struct {
	routeRepo *database.RouteRepository
	logger    *logrus.Logger
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(routeRepo *database.RouteRepository, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routeRepo: routeRepo,
		logger:    logger,
	}
}

// ListRoutes returns all template routes
// GET /api/routes
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	routes, err := h.routeRepo.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list template routes")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, routes)
}

// CreateRoute creates a template route, active by default
// POST /api/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateTemplateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	route := &models.TemplateRoute{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		VehicleNumber: req.VehicleNumber,
		IsActive:      true,
	}

	if err := h.routeRepo.Create(route); err != nil {
		h.logger.WithError(err).Error("Failed to create template route")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create route"})
		return
	}

	c.JSON(http.StatusCreated, route)
}

// GetRoute returns a template route by id
// GET /api/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch template route")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch route"})
		return
	}
	if route == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// UpdateRoute replaces a template route's fields, including its active flag
// PUT /api/routes/:id
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	route, err := h.routeRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch template route for update")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch route"})
		return
	}
	if route == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
		return
	}

	var req struct {
		Origin        *string `json:"origin"`
		Destination   *string `json:"destination"`
		DepartureTime *string `json:"time"`
		VehicleNumber *string `json:"vehicleId"`
		IsActive      *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Origin != nil {
		route.Origin = *req.Origin
	}
	if req.Destination != nil {
		route.Destination = *req.Destination
	}
	if req.DepartureTime != nil {
		route.DepartureTime = *req.DepartureTime
	}
	if req.VehicleNumber != nil {
		route.VehicleNumber = *req.VehicleNumber
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}

	if err := h.routeRepo.Update(route); err != nil {
		h.logger.WithError(err).Error("Failed to update template route")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update route"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// DeleteRoute removes a template route. Trips already generated from it are
// unaffected.
// DELETE /api/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	deleted, err := h.routeRepo.Delete(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete template route")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete route"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
