package rideclient

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
)

// DefaultPollInterval is how often a watch polls the ride's status.
const DefaultPollInterval = time.Second

// Session is one rider's view of their ride in progress. The ride
// reference is cleared when the ride completes.
type Session struct {
	mu   sync.Mutex
	ride *domain.Ride
}

// Ride returns the session's current ride, or nil after completion.
func (s *Session) Ride() *domain.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ride
}

func (s *Session) set(ride *domain.Ride) {
	s.mu.Lock()
	s.ride = ride
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.ride = nil
	s.mu.Unlock()
}

// Watcher polls ride status until completion.
type Watcher struct {
	api      RideAPI
	interval time.Duration
	log      *logrus.Logger
}

// NewWatcher creates a watcher polling at the given interval. A zero or
// negative interval falls back to DefaultPollInterval.
func NewWatcher(api RideAPI, interval time.Duration, log *logrus.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		api:      api,
		interval: interval,
		log:      log,
	}
}

// Watch polls the ride until it reaches done or ctx is cancelled,
// keeping session current with the latest observed state. Poll errors
// are logged and the loop keeps going; a transient read failure must
// not end the watch. On completion the session's ride reference is
// cleared and the final ride is returned.
func (w *Watcher) Watch(ctx context.Context, session *Session, rideID string) (*domain.Ride, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		ride, err := w.api.GetRide(ctx, rideID)
		if err != nil {
			w.log.WithError(err).WithField("ride_id", rideID).Warn("ride status poll failed")
			continue
		}

		session.set(ride)

		if ride.Status == domain.RideStatusDone {
			session.clear()
			w.log.WithField("ride_id", rideID).Info("ride observed done")
			return ride, nil
		}
	}
}
