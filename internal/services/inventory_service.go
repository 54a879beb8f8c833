package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/roadlink/car-booking-backend/internal/apperrors"
	"github.com/roadlink/car-booking-backend/internal/cache"
	"github.com/roadlink/car-booking-backend/internal/metrics"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// maxCommitAttempts bounds the optimistic-concurrency retry loop. Each
// attempt re-reads the trip and re-validates every requested seat, so
// exhaustion means the trip is under heavy concurrent mutation.
const maxCommitAttempts = 3

// TripStore is the trip persistence the engine needs. CommitReservation and
// CommitRelease must apply the trip mutation and the booking change as one
// atomic unit, and must return apperrors.ErrVersionConflict when the trip's
// version no longer matches the expected one.
type TripStore interface {
	GetByID(tripID string) (*models.Trip, error)
	CommitReservation(trip *models.Trip, expectedVersion int, booking *models.Booking) error
	CommitRelease(trip *models.Trip, expectedVersion int, booking *models.Booking, remove bool) error
}

// BookingStore is the booking lookup the engine needs for releases
type BookingStore interface {
	GetByID(bookingID string) (*models.Booking, error)
}

// InventoryService is the sole authority for mutating a trip's seat map in
// response to booking-lifecycle events. It guarantees that no seat is
// double-booked despite concurrent callers: every reservation validates
// against a single snapshot of the trip and commits under that snapshot's
// version; a conflicting concurrent write forces a full re-validation.
type InventoryService struct {
	trips     TripStore
	bookings  BookingStore
	seatCache *cache.SeatCache
	logger    *logrus.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(trips TripStore, bookings BookingStore, seatCache *cache.SeatCache, logger *logrus.Logger) *InventoryService {
	return &InventoryService{
		trips:     trips,
		bookings:  bookings,
		seatCache: seatCache,
		logger:    logger,
	}
}

// Reserve atomically allocates the requested seats to a new confirmed
// booking. For any two concurrent calls naming an overlapping seat, exactly
// one succeeds; the other fails with a seat-unavailable error.
func (s *InventoryService) Reserve(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	return s.reserve(ctx, req, nil)
}

// ConfirmWithPayment reserves the draft's seats and attaches the payment
// receipt, committed as the same atomic unit. The caller must have verified
// the payment signature already; this operation trusts that verification.
// If the seats were taken between order creation and payment confirmation,
// the reservation fails and no booking is created - the caller owns the
// out-of-band refund.
func (s *InventoryService) ConfirmWithPayment(ctx context.Context, receipt models.PaymentReceipt, draft *models.CreateBookingRequest) (*models.Booking, error) {
	return s.reserve(ctx, draft, &receipt)
}

func (s *InventoryService) reserve(ctx context.Context, req *models.CreateBookingRequest, receipt *models.PaymentReceipt) (*models.Booking, error) {
	if req.Date == "" {
		return nil, apperrors.Validation("missing booking date")
	}
	if len(req.Passengers) == 0 {
		return nil, apperrors.Validation("at least one passenger is required")
	}

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		if attempt > 0 {
			metrics.CommitRetries.Inc()
		}

		trip, err := s.trips.GetByID(req.TripID)
		if err != nil {
			return nil, err
		}
		if trip == nil {
			return nil, apperrors.NotFound("trip")
		}

		// Validate every requested seat against this snapshot before
		// touching anything
		seatMap := trip.SeatMap.Clone()
		for _, p := range req.Passengers {
			seat := seatMap.Find(p.SeatNumber, p.SeatClass)
			if seat == nil {
				return nil, apperrors.InvalidSeat(p.SeatNumber)
			}
			if seat.IsBooked {
				metrics.SeatConflicts.Inc()
				return nil, apperrors.SeatUnavailable(p.SeatNumber)
			}
		}

		passengers := make(models.PassengerList, 0, len(req.Passengers))
		for _, p := range req.Passengers {
			seatMap.Find(p.SeatNumber, p.SeatClass).IsBooked = true
			if trip.AvailableSeats > 0 {
				trip.AvailableSeats--
			}

			name := p.Name
			if name == "" {
				name = req.ContactName
			}
			passengers = append(passengers, models.Passenger{
				Name:       name,
				Age:        p.Age,
				SeatClass:  p.SeatClass,
				SeatNumber: p.SeatNumber,
				Price:      trip.Price.For(p.SeatClass),
			})
		}
		trip.SeatMap = seatMap

		booking := &models.Booking{
			ID:            uuid.New().String(),
			TripID:        trip.ID,
			VehicleNumber: trip.VehicleNumber,
			TravelDate:    req.Date,
			ContactInfo: models.ContactInfo{
				Name:  req.ContactName,
				Phone: req.ContactPhone,
				Email: req.ContactEmail,
			},
			Passengers: passengers,
			Status:     models.BookingStatusConfirmed,
			Payment:    receipt,
		}

		err = s.trips.CommitReservation(trip, trip.Version, booking)
		if errors.Is(err, apperrors.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.seatCache.Invalidate(ctx, trip.ID)
		metrics.BookingsConfirmed.Inc()
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"trip_id":    trip.ID,
			"seats":      len(passengers),
			"paid":       receipt != nil,
		}).Info("Booking confirmed")

		return booking, nil
	}

	return nil, apperrors.Conflict("trip is being updated concurrently, please retry")
}

// Release frees the booking's seats on the referenced trip, atomically with
// the booking status change (cancel) or removal (delete).
func (s *InventoryService) Release(ctx context.Context, bookingID string, mode models.ReleaseMode) (*models.ReleaseResult, error) {
	if mode != models.ReleaseModeCancel && mode != models.ReleaseModeDelete {
		return nil, apperrors.Validation("invalid release mode %q", mode)
	}

	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}
	if mode == models.ReleaseModeCancel && booking.Status == models.BookingStatusCancelled {
		return nil, apperrors.AlreadyCancelled(bookingID)
	}

	remove := mode == models.ReleaseModeDelete
	booking.Status = models.BookingStatusCancelled

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		if attempt > 0 {
			metrics.CommitRetries.Inc()
		}

		trip, err := s.trips.GetByID(booking.TripID)
		if err != nil {
			return nil, err
		}

		released := 0
		if trip == nil {
			// The seat map is immutable post-creation, so a missing trip
			// is an anomaly; the booking mutation still goes through
			s.logger.WithFields(logrus.Fields{
				"booking_id": bookingID,
				"trip_id":    booking.TripID,
			}).Warn("Releasing booking whose trip no longer exists")
		} else {
			seatMap := trip.SeatMap.Clone()
			for _, p := range booking.Passengers {
				seat := seatMap.Find(p.SeatNumber, p.SeatClass)
				if seat == nil {
					s.logger.WithFields(logrus.Fields{
						"booking_id": bookingID,
						"trip_id":    trip.ID,
						"seat":       p.SeatNumber,
					}).Warn("Booked seat missing from trip seat map, skipping release")
					continue
				}
				seat.IsBooked = false
				trip.AvailableSeats++
				released++
			}
			trip.SeatMap = seatMap
		}

		expectedVersion := 0
		if trip != nil {
			expectedVersion = trip.Version
		}

		err = s.trips.CommitRelease(trip, expectedVersion, booking, remove)
		if errors.Is(err, apperrors.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.seatCache.Invalidate(ctx, booking.TripID)
		metrics.BookingsReleased.WithLabelValues(string(mode)).Inc()
		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"trip_id":    booking.TripID,
			"mode":       mode,
			"released":   released,
		}).Info("Booking seats released")

		return &models.ReleaseResult{
			BookingID:     bookingID,
			Mode:          mode,
			SeatsReleased: released,
		}, nil
	}

	return nil, apperrors.Conflict("trip is being updated concurrently, please retry")
}
