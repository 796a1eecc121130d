package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
	"chainride/internal/fare"
	"chainride/internal/geocode"
	"chainride/internal/repository"
)

// SettlementScheduler schedules the post-acceptance settlement and the
// delayed completion of a ride.
type SettlementScheduler interface {
	Schedule(rideID, riderAddress, driverAddress string, fare float64)
}

// RideService owns the ride state machine: requested -> accepted -> done.
type RideService struct {
	rideRepo    repository.RideRepository
	userRepo    repository.UserRepository
	geocoder    geocode.Geocoder
	settlements SettlementScheduler
	log         *logrus.Logger
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	geocoder geocode.Geocoder,
	settlements SettlementScheduler,
	log *logrus.Logger,
) *RideService {
	return &RideService{
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		geocoder:    geocoder,
		settlements: settlements,
		log:         log,
	}
}

// RequestRideInput contains the parameters for requesting a ride.
type RequestRideInput struct {
	RiderID     string
	Pickup      fare.Coordinate
	Destination fare.Coordinate
}

// RequestRide validates the rider, resolves both endpoints to place names,
// computes the fare, and persists the ride in the requested state. The
// fare is fixed here and never recomputed.
func (s *RideService) RequestRide(ctx context.Context, in RequestRideInput) (*domain.Ride, error) {
	if in.RiderID == "" {
		return nil, ErrInvalidRiderID
	}

	if _, err := s.userRepo.GetByID(ctx, in.RiderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}

	amount, err := fare.Calculate(in.Pickup, in.Destination)
	if err != nil {
		return nil, err
	}

	source, err := s.geocoder.ReverseGeocode(ctx, in.Pickup.Lat, in.Pickup.Lng)
	if err != nil {
		return nil, err
	}
	destination, err := s.geocoder.ReverseGeocode(ctx, in.Destination.Lat, in.Destination.Lng)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ride := &domain.Ride{
		ID:        uuid.New().String(),
		RiderID:   in.RiderID,
		Route:     fmt.Sprintf("%s to %s", source, destination),
		Fare:      amount,
		TimeOfDay: now.Format("3:04:05 PM"),
		Status:    domain.RideStatusRequested,
		CreatedAt: now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"ride_id":  ride.ID,
		"rider_id": ride.RiderID,
		"fare":     ride.Fare,
	}).Info("ride requested")

	return ride, nil
}

// ListRequestedRides returns all rides awaiting a driver, with the
// requesting rider populated. Insertion order; no ordering is promised.
func (s *RideService) ListRequestedRides(ctx context.Context) ([]*domain.Ride, error) {
	rides, err := s.rideRepo.ListByStatus(ctx, domain.RideStatusRequested)
	if err != nil {
		return nil, err
	}

	for _, ride := range rides {
		rider, err := s.userRepo.GetByID(ctx, ride.RiderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ride.Rider = rider
	}

	return rides, nil
}

// AcceptRide assigns the driver to a requested ride. Concurrent attempts
// on the same ride resolve through the store's conditional update: exactly
// one wins, the rest get ErrRideAlreadyAccepted. On success the settlement
// is scheduled fire-and-forget; AcceptRide returns once the accepted state
// is durable, not once settlement confirms.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDriverNotFound
		}
		return err
	}

	// Fare and rider address are fixed at creation, so reading them before
	// the conditional update is safe.
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRideNotFound
		}
		return err
	}

	rider, err := s.userRepo.GetByID(ctx, ride.RiderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRiderNotFound
		}
		return err
	}

	if err := s.rideRepo.AcceptIfRequested(ctx, rideID, driverID); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return ErrRideAlreadyAccepted
		}
		return err
	}

	s.log.WithFields(logrus.Fields{
		"ride_id":   rideID,
		"driver_id": driverID,
		"fare":      ride.Fare,
	}).Info("ride accepted")

	s.settlements.Schedule(rideID, rider.LedgerAddress, driver.LedgerAddress, ride.Fare)

	return nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}

// ListRideHistoryByRider returns every ride the user has requested.
func (s *RideService) ListRideHistoryByRider(ctx context.Context, riderID string) ([]*domain.Ride, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.rideRepo.ListByRider(ctx, riderID)
}

// ListRideHistoryByDriver returns every ride the driver has accepted.
func (s *RideService) ListRideHistoryByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.rideRepo.ListByDriver(ctx, driverID)
}

// UpdateRideStatus is an administrative override. It accepts any status
// value without checking the transition table; callers are expected to
// supply forward transitions only.
func (s *RideService) UpdateRideStatus(ctx context.Context, rideID string, status domain.RideStatus) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if status == "" {
		return ErrInvalidStatus
	}

	if err := s.rideRepo.UpdateStatus(ctx, rideID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRideNotFound
		}
		return err
	}

	s.log.WithFields(logrus.Fields{
		"ride_id": rideID,
		"status":  status,
	}).Warn("ride status overridden")

	return nil
}
