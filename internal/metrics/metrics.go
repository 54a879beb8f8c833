// Package metrics exposes prometheus counters for the booking core
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsConfirmed counts successfully committed reservations
	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_reservations_confirmed_total",
		Help: "Number of reservations committed successfully",
	})

	// BookingsReleased counts seat releases by mode (cancel, delete)
	BookingsReleased = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_releases_total",
		Help: "Number of bookings cancelled or deleted",
	}, []string{"mode"})

	// SeatConflicts counts reservations rejected because a requested seat
	// was already held
	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_seat_conflicts_total",
		Help: "Number of reservations rejected due to unavailable seats",
	})

	// CommitRetries counts optimistic-concurrency retries on trip commits
	CommitRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_commit_retries_total",
		Help: "Number of trip commit retries after version conflicts",
	})

	// TripsGenerated counts trips created by the template generator
	TripsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_trips_generated_total",
		Help: "Number of trips created by the template generator",
	})
)
