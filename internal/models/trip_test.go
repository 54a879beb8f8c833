package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeatMap(t *testing.T) {
	seatMap := DefaultSeatMap(6)

	require.Len(t, seatMap, 6)
	assert.Equal(t, "1", seatMap[0].SeatNumber)
	assert.Equal(t, SeatClassFront, seatMap[0].SeatClass)
	for _, seat := range seatMap[1:] {
		assert.Equal(t, SeatClassRear, seat.SeatClass)
		assert.False(t, seat.IsBooked)
	}
}

func TestSeatMapFind(t *testing.T) {
	seatMap := DefaultSeatMap(6)

	seat := seatMap.Find("3", SeatClassRear)
	require.NotNil(t, seat)
	assert.Equal(t, "3", seat.SeatNumber)

	// Find returns a pointer into the map, so mutation sticks
	seat.IsBooked = true
	assert.True(t, seatMap[2].IsBooked)

	assert.Nil(t, seatMap.Find("1", SeatClassRear))
	assert.Nil(t, seatMap.Find("99", SeatClassRear))
}

func TestSeatMapAvailable(t *testing.T) {
	seatMap := DefaultSeatMap(6)
	seatMap.Find("2", SeatClassRear).IsBooked = true
	seatMap.Find("5", SeatClassRear).IsBooked = true

	available := seatMap.Available()
	require.Len(t, available, 4)
	assert.Equal(t, "1", available[0].SeatNumber)
	assert.Equal(t, "3", available[1].SeatNumber)
	assert.Equal(t, 4, seatMap.CountAvailable())
}

func TestSeatMapClone(t *testing.T) {
	seatMap := DefaultSeatMap(6)
	clone := seatMap.Clone()

	clone.Find("1", SeatClassFront).IsBooked = true
	assert.False(t, seatMap[0].IsBooked)
}

func TestPriceTableFor(t *testing.T) {
	price := PriceTable{Front: 999, Rear: 799}

	assert.Equal(t, 999.0, price.For(SeatClassFront))
	assert.Equal(t, 799.0, price.For(SeatClassRear))
}

func TestCreateTripRequestValidate(t *testing.T) {
	valid := func() CreateTripRequest {
		return CreateTripRequest{
			Origin:        "Ballia",
			Destination:   "Lucknow",
			DepartureTime: "08:00",
			Date:          "2025-01-15",
			VehicleNumber: "UP60-1234",
		}
	}

	t.Run("defaults the seat count", func(t *testing.T) {
		req := valid()
		require.NoError(t, req.Validate())
		assert.Equal(t, DefaultTotalSeats, req.TotalSeats)
	})

	t.Run("requires a date", func(t *testing.T) {
		req := valid()
		req.Date = ""
		assert.Error(t, req.Validate())
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		req := valid()
		req.Date = "15-01-2025"
		assert.Error(t, req.Validate())
	})
}

func TestCreateTripRequestToTrip(t *testing.T) {
	t.Run("generates the default layout", func(t *testing.T) {
		req := CreateTripRequest{
			Origin:        "Ballia",
			Destination:   "Lucknow",
			DepartureTime: "08:00",
			Date:          "2025-01-15",
			VehicleNumber: "UP60-1234",
			Price:         PriceTable{Front: 999, Rear: 799},
		}
		require.NoError(t, req.Validate())

		trip := req.ToTrip()
		assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), trip.TripDate)
		assert.Equal(t, DefaultTotalSeats, trip.TotalSeats)
		assert.Equal(t, DefaultTotalSeats, trip.AvailableSeats)
		require.Len(t, trip.SeatMap, DefaultTotalSeats)
	})

	t.Run("ignores a seat map that does not cover the seat count", func(t *testing.T) {
		req := CreateTripRequest{
			Origin:        "Ballia",
			Destination:   "Lucknow",
			DepartureTime: "08:00",
			Date:          "2025-01-15",
			VehicleNumber: "UP60-1234",
			SeatMap: SeatMap{
				{SeatNumber: "A", SeatClass: SeatClassFront},
			},
		}
		require.NoError(t, req.Validate())

		trip := req.ToTrip()
		require.Len(t, trip.SeatMap, DefaultTotalSeats)
		assert.Equal(t, "1", trip.SeatMap[0].SeatNumber)
	})

	t.Run("keeps a seat map that matches the seat count", func(t *testing.T) {
		req := CreateTripRequest{
			Origin:        "Ballia",
			Destination:   "Lucknow",
			DepartureTime: "08:00",
			Date:          "2025-01-15",
			VehicleNumber: "UP60-1234",
			TotalSeats:    2,
			SeatMap: SeatMap{
				{SeatNumber: "A", SeatClass: SeatClassFront},
				{SeatNumber: "B", SeatClass: SeatClassRear},
			},
		}
		require.NoError(t, req.Validate())

		trip := req.ToTrip()
		require.Len(t, trip.SeatMap, 2)
		assert.Equal(t, "A", trip.SeatMap[0].SeatNumber)
	})
}

func TestSeatClassIsValid(t *testing.T) {
	assert.True(t, SeatClassFront.IsValid())
	assert.True(t, SeatClassRear.IsValid())
	assert.False(t, SeatClass("business").IsValid())
}
