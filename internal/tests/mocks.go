package tests

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
	"chainride/internal/repository"
)

// testLogger returns a logger that discards everything.
func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. Its
// AcceptIfRequested carries the same conditional-update semantics as the
// MongoDB implementation: the status check and the driver assignment
// happen under one lock, so concurrent accepts resolve to one winner.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	AcceptCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	AcceptError       error
	UpdateStatusError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ride
	m.rides[ride.ID] = &copied
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copied := *ride
	return &copied, nil
}

func (m *MockRideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.Status == status {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockRideRepository) ListByRider(ctx context.Context, riderID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.RiderID == riderID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.DriverID == driverID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockRideRepository) AcceptIfRequested(ctx context.Context, id, driverID string) error {
	atomic.AddInt32(&m.AcceptCallCount, 1)
	if m.AcceptError != nil {
		return m.AcceptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != domain.RideStatusRequested {
		return repository.ErrNotMatched
	}
	ride.Status = domain.RideStatusAccepted
	ride.DriverID = driverID
	return nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = status
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil
	}
	copied := *ride
	return &copied
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK LEDGER GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock implementation of the settlement gateway.
type MockGateway struct {
	mu      sync.Mutex
	settled []SettleCall

	// Counters for verification
	SettleCallCount int32

	// Error injection. When SettleError is set the returned receipt
	// still reflects PartialEscrow, mirroring the real gateway's
	// receipt-alongside-error contract.
	SettleError   error
	PartialEscrow bool

	// SettleLatency makes every Settle call block, simulating a slow
	// ledger node.
	SettleLatency time.Duration
}

// SettleCall records one Settle invocation.
type SettleCall struct {
	RiderAddress  string
	DriverAddress string
	Fare          float64
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Settle(ctx context.Context, riderAddress, driverAddress string, fare float64) (*domain.SettlementReceipt, error) {
	atomic.AddInt32(&m.SettleCallCount, 1)
	if m.SettleLatency > 0 {
		time.Sleep(m.SettleLatency)
	}
	m.mu.Lock()
	m.settled = append(m.settled, SettleCall{
		RiderAddress:  riderAddress,
		DriverAddress: driverAddress,
		Fare:          fare,
	})
	m.mu.Unlock()

	receipt := &domain.SettlementReceipt{
		RiderAddress:  riderAddress,
		DriverAddress: driverAddress,
		Fare:          fare,
	}
	if m.SettleError != nil {
		receipt.EscrowRecorded = m.PartialEscrow
		return receipt, m.SettleError
	}
	receipt.EscrowRecorded = true
	receipt.TransferRecorded = true
	return receipt, nil
}

// SettleCalls returns the recorded calls for assertions.
func (m *MockGateway) SettleCalls() []SettleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SettleCall, len(m.settled))
	copy(out, m.settled)
	return out
}

// ──────────────────────────────────────────────
// MOCK GEOCODER
// ──────────────────────────────────────────────

// MockGeocoder resolves every point to a fixed-format place name.
type MockGeocoder struct {
	// Error injection
	Err error
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if lat == 0 && lng == 0 {
		return "Null Island", nil
	}
	return "Somewhere", nil
}

// ──────────────────────────────────────────────
// MOCK SETTLEMENT SCHEDULER
// ──────────────────────────────────────────────

// MockScheduler records Schedule calls without running anything.
type MockScheduler struct {
	mu        sync.Mutex
	scheduled []ScheduledSettlement
}

// ScheduledSettlement records one Schedule invocation.
type ScheduledSettlement struct {
	RideID        string
	RiderAddress  string
	DriverAddress string
	Fare          float64
}

func (m *MockScheduler) Schedule(rideID, riderAddress, driverAddress string, fare float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, ScheduledSettlement{
		RideID:        rideID,
		RiderAddress:  riderAddress,
		DriverAddress: driverAddress,
		Fare:          fare,
	})
}

// Scheduled returns the recorded calls for assertions.
func (m *MockScheduler) Scheduled() []ScheduledSettlement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScheduledSettlement, len(m.scheduled))
	copy(out, m.scheduled)
	return out
}

// ──────────────────────────────────────────────
// FIXED ADDRESS ASSIGNER
// ──────────────────────────────────────────────

// FixedAssigner hands out addresses from a list, in order.
type FixedAssigner struct {
	mu        sync.Mutex
	Addresses []string
	next      int
}

func (a *FixedAssigner) Assign(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	addr := a.Addresses[a.next%len(a.Addresses)]
	a.next++
	return addr, nil
}
