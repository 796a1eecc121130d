package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
	"chainride/internal/repository"
)

// LedgerGateway is the settlement surface of the ledger.
type LedgerGateway interface {
	Settle(ctx context.Context, riderAddress, driverAddress string, fare float64) (*domain.SettlementReceipt, error)
}

// SettlementOutcome records what happened to one ride's settlement task.
// It exists so partial completion (escrow recorded, transfer failed) is
// inspectable by an operator instead of being discarded.
type SettlementOutcome struct {
	RideID      string
	Receipt     *domain.SettlementReceipt
	SettleErr   error
	Cancelled   bool
	RideDone    bool
	ScheduledAt time.Time
	FinishedAt  time.Time
}

// SettlementService runs the post-acceptance settlement tasks. Each task
// settles the fare against the ledger, then, after a fixed delay measured
// from acceptance, marks the ride done. The delay stands in for ledger
// confirmation latency and is NOT gated on settlement succeeding: a ride
// reaches done even when both ledger phases failed. Ledger errors are
// logged and recorded on the outcome, never surfaced to the ride's status.
type SettlementService struct {
	gateway  LedgerGateway
	rideRepo repository.RideRepository
	delay    time.Duration
	log      *logrus.Logger

	mu       sync.Mutex
	pending  map[string]context.CancelFunc
	outcomes map[string]*SettlementOutcome
}

// NewSettlementService creates a new SettlementService with the given
// settlement delay.
func NewSettlementService(
	gateway LedgerGateway,
	rideRepo repository.RideRepository,
	delay time.Duration,
	log *logrus.Logger,
) *SettlementService {
	return &SettlementService{
		gateway:  gateway,
		rideRepo: rideRepo,
		delay:    delay,
		log:      log,
		pending:  make(map[string]context.CancelFunc),
		outcomes: make(map[string]*SettlementOutcome),
	}
}

// Ensure SettlementService implements SettlementScheduler.
var _ SettlementScheduler = (*SettlementService)(nil)

// Schedule starts the settlement task for an accepted ride. Fire and
// forget: the caller is not told whether settlement succeeded.
func (s *SettlementService) Schedule(rideID, riderAddress, driverAddress string, fare float64) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.pending[rideID] = cancel
	s.outcomes[rideID] = &SettlementOutcome{
		RideID:      rideID,
		ScheduledAt: time.Now(),
	}
	s.mu.Unlock()

	go s.run(ctx, rideID, riderAddress, driverAddress, fare)
}

// Cancel halts a pending completion, for an operator stopping a stuck
// settlement. Returns false when no task is pending for the ride. Ledger
// calls already issued are not recalled; only the done transition stops.
func (s *SettlementService) Cancel(rideID string) bool {
	s.mu.Lock()
	cancel, ok := s.pending[rideID]
	s.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	return true
}

// Outcome returns the recorded outcome for a ride's settlement, if any.
func (s *SettlementService) Outcome(rideID string) (SettlementOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, ok := s.outcomes[rideID]
	if !ok {
		return SettlementOutcome{}, false
	}
	return *outcome, true
}

func (s *SettlementService) run(ctx context.Context, rideID, riderAddress, driverAddress string, fare float64) {
	// The delay is measured from acceptance, concurrent with the ledger
	// calls, so settlement latency does not push completion out.
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	// Ledger calls run on their own goroutine and are never cancelled
	// once issued; the gateway's own call timeout bounds them. The done
	// transition below does not wait for them.
	go func() {
		receipt, err := s.gateway.Settle(context.Background(), riderAddress, driverAddress, fare)

		s.mu.Lock()
		outcome := s.outcomes[rideID]
		outcome.Receipt = receipt
		outcome.SettleErr = err
		s.mu.Unlock()

		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"ride_id":         rideID,
				"fare":            fare,
				"escrow_recorded": receipt != nil && receipt.EscrowRecorded,
			}).Error("settlement failed; ride completion proceeds regardless")
		}
	}()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		outcome := s.outcomes[rideID]
		outcome.Cancelled = true
		outcome.FinishedAt = time.Now()
		delete(s.pending, rideID)
		s.mu.Unlock()
		s.log.WithField("ride_id", rideID).Warn("settlement completion cancelled")
		return
	case <-timer.C:
	}

	updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	markErr := s.rideRepo.UpdateStatus(updateCtx, rideID, domain.RideStatusDone)

	s.mu.Lock()
	outcome := s.outcomes[rideID]
	outcome.RideDone = markErr == nil
	outcome.FinishedAt = time.Now()
	delete(s.pending, rideID)
	s.mu.Unlock()

	if markErr != nil {
		// The one condition warranting operator alarm: the ride will stay
		// in accepted past the settlement delay.
		s.log.WithError(markErr).WithField("ride_id", rideID).
			Error("failed to mark ride done")
		return
	}

	s.log.WithField("ride_id", rideID).Info("ride completed")
}
