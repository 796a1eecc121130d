package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chainride/internal/domain"
	"chainride/internal/service"
)

// ──────────────────────────────────────────────
// RIDE ACCEPTANCE AND THE ONE-WINNER GUARANTEE
// ──────────────────────────────────────────────

func seedRequestedRide(rideRepo *MockRideRepository, userRepo *MockUserRepository) {
	addRider(userRepo, "rider-1", "0xaaa")
	rideRepo.AddRide(&domain.Ride{
		ID:      "ride-1",
		RiderID: "rider-1",
		Fare:    250,
		Status:  domain.RideStatusRequested,
	})
}

func addDriver(userRepo *MockUserRepository, id, address string) {
	userRepo.AddUser(&domain.User{
		ID:            id,
		Username:      "driver-" + id,
		Email:         id + "@example.com",
		Role:          domain.UserRoleDriver,
		LedgerAddress: address,
	})
}

func TestAcceptRide_Valid_SchedulesSettlement(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	scheduler := &MockScheduler{}
	seedRequestedRide(rideRepo, userRepo)
	addDriver(userRepo, "driver-1", "0xbbb")

	svc := newRideService(rideRepo, userRepo, scheduler)

	if err := svc.AcceptRide(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected status accepted, got %s", ride.Status)
	}
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", ride.DriverID)
	}

	scheduled := scheduler.Scheduled()
	if len(scheduled) != 1 {
		t.Fatalf("expected 1 scheduled settlement, got %d", len(scheduled))
	}
	got := scheduled[0]
	if got.RideID != "ride-1" || got.RiderAddress != "0xaaa" || got.DriverAddress != "0xbbb" || got.Fare != 250 {
		t.Errorf("unexpected settlement parameters: %+v", got)
	}
}

func TestAcceptRide_ConcurrentDrivers_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	const drivers = 20

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	scheduler := &MockScheduler{}
	seedRequestedRide(rideRepo, userRepo)
	for i := 0; i < drivers; i++ {
		addDriver(userRepo, driverID(i), "0xd")
	}

	svc := newRideService(rideRepo, userRepo, scheduler)

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.AcceptRide(context.Background(), "ride-1", driverID(i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrRideAlreadyAccepted):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected status accepted, got %s", ride.Status)
	}
	if ride.DriverID == "" {
		t.Error("expected a driver to be assigned")
	}
	if len(scheduler.Scheduled()) != 1 {
		t.Errorf("expected settlement scheduled once, got %d", len(scheduler.Scheduled()))
	}
}

func driverID(i int) string {
	return "driver-" + string(rune('a'+i))
}

func TestAcceptRide_AlreadyAccepted_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	seedRequestedRide(rideRepo, userRepo)
	addDriver(userRepo, "driver-1", "0xbbb")
	addDriver(userRepo, "driver-2", "0xccc")

	svc := newRideService(rideRepo, userRepo, &MockScheduler{})

	if err := svc.AcceptRide(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	err := svc.AcceptRide(context.Background(), "ride-1", "driver-2")
	if !errors.Is(err, service.ErrRideAlreadyAccepted) {
		t.Fatalf("expected ErrRideAlreadyAccepted, got: %v", err)
	}

	// The losing driver must not overwrite the assignment.
	if got := rideRepo.GetRide("ride-1").DriverID; got != "driver-1" {
		t.Errorf("expected driver-1 to keep the ride, got %q", got)
	}
}

func TestAcceptRide_DoneRide_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	addRider(userRepo, "rider-1", "0xaaa")
	addDriver(userRepo, "driver-1", "0xbbb")
	rideRepo.AddRide(&domain.Ride{
		ID:      "ride-1",
		RiderID: "rider-1",
		Status:  domain.RideStatusDone,
	})

	svc := newRideService(rideRepo, userRepo, &MockScheduler{})

	err := svc.AcceptRide(context.Background(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrRideAlreadyAccepted) {
		t.Fatalf("expected ErrRideAlreadyAccepted, got: %v", err)
	}
}

func TestAcceptRide_UnknownRide_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	addDriver(userRepo, "driver-1", "0xbbb")

	svc := newRideService(rideRepo, userRepo, &MockScheduler{})

	err := svc.AcceptRide(context.Background(), "no-such-ride", "driver-1")
	if !errors.Is(err, service.ErrRideNotFound) {
		t.Fatalf("expected ErrRideNotFound, got: %v", err)
	}
}

func TestAcceptRide_UnknownDriver_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	seedRequestedRide(rideRepo, userRepo)

	svc := newRideService(rideRepo, userRepo, &MockScheduler{})

	err := svc.AcceptRide(context.Background(), "ride-1", "nobody")
	if !errors.Is(err, service.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got: %v", err)
	}

	// The ride must stay available.
	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusRequested {
		t.Errorf("expected status requested, got %s", got)
	}
}
