package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/roadlink/car-booking-backend/internal/apperrors"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorld is an in-memory trip and booking store enforcing the same
// version-guarded commit contract as the Postgres repositories
type fakeWorld struct {
	mu             sync.Mutex
	trips          map[string]*models.Trip
	bookings       map[string]*models.Booking
	forceConflicts int
}

func newFakeWorld(trips ...*models.Trip) *fakeWorld {
	w := &fakeWorld{
		trips:    make(map[string]*models.Trip),
		bookings: make(map[string]*models.Booking),
	}
	for _, t := range trips {
		w.trips[t.ID] = copyTrip(t)
	}
	return w
}

func copyTrip(t *models.Trip) *models.Trip {
	clone := *t
	clone.SeatMap = t.SeatMap.Clone()
	return &clone
}

func copyBooking(b *models.Booking) *models.Booking {
	clone := *b
	clone.Passengers = append(models.PassengerList(nil), b.Passengers...)
	return &clone
}

type fakeTripStore struct{ w *fakeWorld }

func (f fakeTripStore) GetByID(tripID string) (*models.Trip, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	t, ok := f.w.trips[tripID]
	if !ok {
		return nil, nil
	}
	return copyTrip(t), nil
}

func (f fakeTripStore) CommitReservation(trip *models.Trip, expectedVersion int, booking *models.Booking) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.forceConflicts > 0 {
		f.w.forceConflicts--
		return apperrors.ErrVersionConflict
	}
	cur, ok := f.w.trips[trip.ID]
	if !ok || cur.Version != expectedVersion {
		return apperrors.ErrVersionConflict
	}
	stored := copyTrip(trip)
	stored.Version = expectedVersion + 1
	f.w.trips[trip.ID] = stored
	f.w.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (f fakeTripStore) CommitRelease(trip *models.Trip, expectedVersion int, booking *models.Booking, remove bool) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.forceConflicts > 0 {
		f.w.forceConflicts--
		return apperrors.ErrVersionConflict
	}
	if trip != nil {
		cur, ok := f.w.trips[trip.ID]
		if !ok || cur.Version != expectedVersion {
			return apperrors.ErrVersionConflict
		}
		stored := copyTrip(trip)
		stored.Version = expectedVersion + 1
		f.w.trips[trip.ID] = stored
	}
	if remove {
		delete(f.w.bookings, booking.ID)
	} else {
		f.w.bookings[booking.ID] = copyBooking(booking)
	}
	return nil
}

type fakeBookingStore struct{ w *fakeWorld }

func (f fakeBookingStore) GetByID(bookingID string) (*models.Booking, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	b, ok := f.w.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	return copyBooking(b), nil
}

func testTrip() *models.Trip {
	return &models.Trip{
		ID:             "trip-1",
		Origin:         "Ballia",
		Destination:    "Lucknow",
		DepartureTime:  "08:00",
		VehicleNumber:  "UP60-1234",
		TotalSeats:     models.DefaultTotalSeats,
		AvailableSeats: models.DefaultTotalSeats,
		Price:          models.PriceTable{Front: 999, Rear: 799},
		SeatMap:        models.DefaultSeatMap(models.DefaultTotalSeats),
		Version:        1,
	}
}

func newTestInventory(w *fakeWorld) *InventoryService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewInventoryService(fakeTripStore{w}, fakeBookingStore{w}, nil, logger)
}

func reserveRequest(seats ...models.PassengerSeatRequest) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		TripID:       "trip-1",
		ContactName:  "Asha Verma",
		ContactPhone: "9876543210",
		ContactEmail: "asha@example.com",
		Date:         "2025-01-15",
		Passengers:   seats,
	}
}

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates seats and confirms the booking", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)

		booking, err := svc.Reserve(ctx, reserveRequest(
			models.PassengerSeatRequest{Name: "Asha Verma", Age: 34, SeatClass: models.SeatClassFront, SeatNumber: "1"},
			models.PassengerSeatRequest{Age: 8, SeatClass: models.SeatClassRear, SeatNumber: "3"},
		))
		require.NoError(t, err)
		require.NotNil(t, booking)

		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, "2025-01-15", booking.TravelDate)
		assert.Equal(t, "UP60-1234", booking.VehicleNumber)
		require.Len(t, booking.Passengers, 2)
		assert.Equal(t, 999.0, booking.Passengers[0].Price)
		assert.Equal(t, 799.0, booking.Passengers[1].Price)
		// Passenger without a name inherits the contact name
		assert.Equal(t, "Asha Verma", booking.Passengers[1].Name)

		trip := w.trips["trip-1"]
		assert.Equal(t, 4, trip.AvailableSeats)
		assert.Equal(t, 2, trip.Version)
		assert.True(t, trip.SeatMap.Find("1", models.SeatClassFront).IsBooked)
		assert.True(t, trip.SeatMap.Find("3", models.SeatClassRear).IsBooked)
		assert.False(t, trip.SeatMap.Find("2", models.SeatClassRear).IsBooked)
	})

	t.Run("rejects a request without a travel date", func(t *testing.T) {
		svc := newTestInventory(newFakeWorld(testTrip()))

		req := reserveRequest(models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"})
		req.Date = ""
		_, err := svc.Reserve(ctx, req)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("rejects a request without passengers", func(t *testing.T) {
		svc := newTestInventory(newFakeWorld(testTrip()))

		_, err := svc.Reserve(ctx, reserveRequest())
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("reports an unknown trip", func(t *testing.T) {
		svc := newTestInventory(newFakeWorld())

		_, err := svc.Reserve(ctx, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		))
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run("rejects a seat that does not exist on the trip", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)

		_, err := svc.Reserve(ctx, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "99"},
		))
		assert.Equal(t, apperrors.KindInvalidSeat, apperrors.KindOf(err))
		assert.Equal(t, models.DefaultTotalSeats, w.trips["trip-1"].AvailableSeats)
		assert.Equal(t, 1, w.trips["trip-1"].Version)
	})

	t.Run("rejects a seat with a mismatched class", func(t *testing.T) {
		svc := newTestInventory(newFakeWorld(testTrip()))

		_, err := svc.Reserve(ctx, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassFront, SeatNumber: "3"},
		))
		assert.Equal(t, apperrors.KindInvalidSeat, apperrors.KindOf(err))
	})

	t.Run("rejects an already booked seat without touching other seats", func(t *testing.T) {
		trip := testTrip()
		trip.SeatMap.Find("2", models.SeatClassRear).IsBooked = true
		trip.AvailableSeats--
		w := newFakeWorld(trip)
		svc := newTestInventory(w)

		_, err := svc.Reserve(ctx, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassFront, SeatNumber: "1"},
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		))
		assert.Equal(t, apperrors.KindSeatUnavailable, apperrors.KindOf(err))
		assert.False(t, w.trips["trip-1"].SeatMap.Find("1", models.SeatClassFront).IsBooked)
		assert.Equal(t, 5, w.trips["trip-1"].AvailableSeats)
	})

	t.Run("gives up after repeated version conflicts", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		w.forceConflicts = maxCommitAttempts
		svc := newTestInventory(w)

		_, err := svc.Reserve(ctx, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		))
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})
}

func TestReserveConcurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("overlapping seat is granted to exactly one caller", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Reserve(ctx, reserveRequest(
					models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "4"},
				))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.Equal(t, apperrors.KindSeatUnavailable, apperrors.KindOf(err))
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 5, w.trips["trip-1"].AvailableSeats)
		assert.Len(t, w.bookings, 1)
	})

	t.Run("disjoint seats both succeed under contention", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)

		seats := []string{"2", "5"}
		var wg sync.WaitGroup
		errs := make([]error, len(seats))
		for i, seat := range seats {
			wg.Add(1)
			go func(i int, seat string) {
				defer wg.Done()
				_, errs[i] = svc.Reserve(ctx, reserveRequest(
					models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: seat},
				))
			}(i, seat)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		trip := w.trips["trip-1"]
		assert.Equal(t, 4, trip.AvailableSeats)
		assert.Equal(t, 3, trip.Version)
		assert.True(t, trip.SeatMap.Find("2", models.SeatClassRear).IsBooked)
		assert.True(t, trip.SeatMap.Find("5", models.SeatClassRear).IsBooked)
		assert.Equal(t, trip.SeatMap.CountAvailable(), trip.AvailableSeats)
	})
}

func TestConfirmWithPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches the payment receipt to the committed booking", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)

		receipt := models.PaymentReceipt{
			OrderID:   "order_abc",
			PaymentID: "pay_def",
			Signature: "sig",
		}
		booking, err := svc.ConfirmWithPayment(ctx, receipt, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassFront, SeatNumber: "1"},
		))
		require.NoError(t, err)
		require.NotNil(t, booking.Payment)
		assert.Equal(t, "order_abc", booking.Payment.OrderID)

		stored := w.bookings[booking.ID]
		require.NotNil(t, stored.Payment)
		assert.Equal(t, "pay_def", stored.Payment.PaymentID)
	})

	t.Run("fails without a booking when the seat was taken meanwhile", func(t *testing.T) {
		trip := testTrip()
		trip.SeatMap.Find("1", models.SeatClassFront).IsBooked = true
		trip.AvailableSeats--
		w := newFakeWorld(trip)
		svc := newTestInventory(w)

		_, err := svc.ConfirmWithPayment(ctx, models.PaymentReceipt{OrderID: "order_abc"}, reserveRequest(
			models.PassengerSeatRequest{SeatClass: models.SeatClassFront, SeatNumber: "1"},
		))
		assert.Equal(t, apperrors.KindSeatUnavailable, apperrors.KindOf(err))
		assert.Empty(t, w.bookings)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	reserveOne := func(t *testing.T, svc *InventoryService, seats ...models.PassengerSeatRequest) *models.Booking {
		t.Helper()
		booking, err := svc.Reserve(ctx, reserveRequest(seats...))
		require.NoError(t, err)
		return booking
	}

	t.Run("cancel restores the seats and keeps the booking", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)
		booking := reserveOne(t, svc,
			models.PassengerSeatRequest{SeatClass: models.SeatClassFront, SeatNumber: "1"},
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		)

		result, err := svc.Release(ctx, booking.ID, models.ReleaseModeCancel)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SeatsReleased)
		assert.Equal(t, models.ReleaseModeCancel, result.Mode)

		trip := w.trips["trip-1"]
		assert.Equal(t, models.DefaultTotalSeats, trip.AvailableSeats)
		assert.False(t, trip.SeatMap.Find("1", models.SeatClassFront).IsBooked)
		assert.False(t, trip.SeatMap.Find("2", models.SeatClassRear).IsBooked)

		stored := w.bookings[booking.ID]
		require.NotNil(t, stored)
		assert.Equal(t, models.BookingStatusCancelled, stored.Status)
	})

	t.Run("delete restores the seats and removes the booking", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)
		booking := reserveOne(t, svc,
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "3"},
		)

		result, err := svc.Release(ctx, booking.ID, models.ReleaseModeDelete)
		require.NoError(t, err)
		assert.Equal(t, 1, result.SeatsReleased)

		assert.NotContains(t, w.bookings, booking.ID)
		assert.Equal(t, models.DefaultTotalSeats, w.trips["trip-1"].AvailableSeats)
	})

	t.Run("cancelling twice is rejected", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)
		booking := reserveOne(t, svc,
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		)

		_, err := svc.Release(ctx, booking.ID, models.ReleaseModeCancel)
		require.NoError(t, err)

		_, err = svc.Release(ctx, booking.ID, models.ReleaseModeCancel)
		assert.Equal(t, apperrors.KindAlreadyCancelled, apperrors.KindOf(err))
	})

	t.Run("deleting a cancelled booking releases its seats again", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)
		booking := reserveOne(t, svc,
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		)

		_, err := svc.Release(ctx, booking.ID, models.ReleaseModeCancel)
		require.NoError(t, err)

		result, err := svc.Release(ctx, booking.ID, models.ReleaseModeDelete)
		require.NoError(t, err)
		assert.Equal(t, 1, result.SeatsReleased)
		assert.NotContains(t, w.bookings, booking.ID)
		// The counter is not clamped to the trip capacity
		assert.Equal(t, models.DefaultTotalSeats+1, w.trips["trip-1"].AvailableSeats)
	})

	t.Run("rejects an unknown release mode", func(t *testing.T) {
		svc := newTestInventory(newFakeWorld(testTrip()))

		_, err := svc.Release(ctx, "whatever", models.ReleaseMode("archive"))
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("reports an unknown booking", func(t *testing.T) {
		svc := newTestInventory(newFakeWorld(testTrip()))

		_, err := svc.Release(ctx, "missing", models.ReleaseModeCancel)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run("booking mutation proceeds when the trip is gone", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)
		booking := reserveOne(t, svc,
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		)

		delete(w.trips, "trip-1")

		result, err := svc.Release(ctx, booking.ID, models.ReleaseModeCancel)
		require.NoError(t, err)
		assert.Equal(t, 0, result.SeatsReleased)
		assert.Equal(t, models.BookingStatusCancelled, w.bookings[booking.ID].Status)
	})

	t.Run("skips seats missing from the seat map", func(t *testing.T) {
		w := newFakeWorld(testTrip())
		svc := newTestInventory(w)
		booking := reserveOne(t, svc,
			models.PassengerSeatRequest{SeatClass: models.SeatClassRear, SeatNumber: "2"},
		)

		// Shrink the stored seat map so the booked seat no longer exists
		w.mu.Lock()
		w.trips["trip-1"].SeatMap = models.SeatMap{
			{SeatNumber: "1", SeatClass: models.SeatClassFront},
		}
		w.mu.Unlock()

		result, err := svc.Release(ctx, booking.ID, models.ReleaseModeCancel)
		require.NoError(t, err)
		assert.Equal(t, 0, result.SeatsReleased)
	})
}
