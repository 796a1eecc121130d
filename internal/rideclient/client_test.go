package rideclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
	"chainride/internal/fare"
	"chainride/internal/ledger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeAPI is a scriptable RideAPI.
type fakeAPI struct {
	mu           sync.Mutex
	requested    int
	requestErr   error
	rides        map[string]*domain.Ride
	getErr       error
	getErrBudget int
}

func (f *fakeAPI) RequestRide(ctx context.Context, riderID string, pickup, destination fare.Coordinate) (*domain.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested++
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	amount, err := fare.Calculate(pickup, destination)
	if err != nil {
		return nil, err
	}
	ride := &domain.Ride{
		ID:      "ride-1",
		RiderID: riderID,
		Fare:    amount,
		Status:  domain.RideStatusRequested,
	}
	f.rides[ride.ID] = ride
	return ride, nil
}

func (f *fakeAPI) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil && f.getErrBudget > 0 {
		f.getErrBudget--
		return nil, f.getErr
	}
	ride, ok := f.rides[rideID]
	if !ok {
		return nil, errors.New("ride not found")
	}
	copied := *ride
	return &copied, nil
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requested
}

// fakeBalances returns a fixed balance per address.
type fakeBalances struct {
	balances map[string]float64
	err      error
}

func (f *fakeBalances) Balance(ctx context.Context, address string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[address], nil
}

var (
	pickup      = fare.Coordinate{Lat: 0, Lng: 0}
	destination = fare.Coordinate{Lat: 0, Lng: 1} // roughly 111 km, fare ~556
)

func TestRequestRideSucceedsWhenBalanceCovers(t *testing.T) {
	api := &fakeAPI{rides: make(map[string]*domain.Ride)}
	balances := &fakeBalances{balances: map[string]float64{"0xabc": 1000}}
	client := NewClient(api, balances, quietLogger())

	ride, err := client.RequestRide(context.Background(), "rider-1", "0xabc", pickup, destination)
	if err != nil {
		t.Fatalf("RequestRide() error = %v", err)
	}
	if ride.RiderID != "rider-1" {
		t.Errorf("RiderID = %q, want rider-1", ride.RiderID)
	}
	if api.requestCount() != 1 {
		t.Errorf("request count = %d, want 1", api.requestCount())
	}
}

func TestRequestRideRejectedOnInsufficientBalance(t *testing.T) {
	api := &fakeAPI{rides: make(map[string]*domain.Ride)}
	balances := &fakeBalances{balances: map[string]float64{"0xabc": 10}}
	client := NewClient(api, balances, quietLogger())

	_, err := client.RequestRide(context.Background(), "rider-1", "0xabc", pickup, destination)
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("RequestRide() error = %v, want ErrInsufficientBalance", err)
	}
	if api.requestCount() != 0 {
		t.Errorf("request reached the server despite failed precheck")
	}
}

func TestRequestRideRejectsInvalidCoordinates(t *testing.T) {
	api := &fakeAPI{rides: make(map[string]*domain.Ride)}
	balances := &fakeBalances{balances: map[string]float64{"0xabc": 1000}}
	client := NewClient(api, balances, quietLogger())

	bad := fare.Coordinate{Lat: 91, Lng: 0}
	_, err := client.RequestRide(context.Background(), "rider-1", "0xabc", bad, destination)
	if !errors.Is(err, fare.ErrInvalidCoordinates) {
		t.Fatalf("RequestRide() error = %v, want ErrInvalidCoordinates", err)
	}
	if api.requestCount() != 0 {
		t.Errorf("request reached the server despite invalid coordinates")
	}
}

func TestRequestRideSurfacesBalanceReadFailure(t *testing.T) {
	api := &fakeAPI{rides: make(map[string]*domain.Ride)}
	balances := &fakeBalances{err: ledger.ErrUnavailable}
	client := NewClient(api, balances, quietLogger())

	_, err := client.RequestRide(context.Background(), "rider-1", "0xabc", pickup, destination)
	if !errors.Is(err, ledger.ErrUnavailable) {
		t.Fatalf("RequestRide() error = %v, want ErrUnavailable", err)
	}
}
