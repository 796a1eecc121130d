package repository

import (
	"context"

	"chainride/internal/domain"
)

// RideRepository defines the persistence operations for rides. Rides are
// append-only history; nothing here deletes.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ListByStatus retrieves all rides in the given status, insertion order.
	ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error)

	// ListByRider retrieves all rides requested by the given user.
	ListByRider(ctx context.Context, riderID string) ([]*domain.Ride, error)

	// ListByDriver retrieves all rides accepted by the given driver.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// AcceptIfRequested atomically sets the driver and moves the ride to
	// accepted, but only while its status is still requested. Returns
	// ErrNotMatched when the condition did not hold (ride absent or no
	// longer requested). This conditional update is the sole concurrency
	// control for acceptance.
	AcceptIfRequested(ctx context.Context, id, driverID string) error

	// UpdateStatus overwrites the ride's status without checking the
	// transition table.
	UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error
}
