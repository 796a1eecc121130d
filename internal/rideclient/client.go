// Package rideclient is the rider-side companion to the ride API. It
// prechecks the rider's ledger balance against the estimated fare before
// submitting a request, and watches an accepted ride until completion.
package rideclient

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
	"chainride/internal/fare"
	"chainride/internal/ledger"
)

// RideAPI is the subset of the ride service the client depends on.
type RideAPI interface {
	RequestRide(ctx context.Context, riderID string, pickup, destination fare.Coordinate) (*domain.Ride, error)
	GetRide(ctx context.Context, rideID string) (*domain.Ride, error)
}

// BalanceReader reads a ledger account's spendable balance.
type BalanceReader interface {
	Balance(ctx context.Context, address string) (float64, error)
}

// Client requests rides on behalf of a rider.
type Client struct {
	api      RideAPI
	balances BalanceReader
	log      *logrus.Logger
}

// NewClient creates a new ride client.
func NewClient(api RideAPI, balances BalanceReader, log *logrus.Logger) *Client {
	return &Client{
		api:      api,
		balances: balances,
		log:      log,
	}
}

// RequestRide estimates the fare locally, rejects the request when the
// rider's balance cannot cover it, and otherwise submits it. The check is
// advisory: the balance can still drop before settlement runs, and the
// server does not re-check it.
func (c *Client) RequestRide(ctx context.Context, riderID, riderAddress string, pickup, destination fare.Coordinate) (*domain.Ride, error) {
	estimate, err := fare.Calculate(pickup, destination)
	if err != nil {
		return nil, err
	}

	balance, err := c.balances.Balance(ctx, riderAddress)
	if err != nil {
		return nil, fmt.Errorf("balance precheck: %w", err)
	}
	if balance < estimate {
		c.log.WithFields(logrus.Fields{
			"rider_id": riderID,
			"estimate": estimate,
			"balance":  balance,
		}).Warn("ride request rejected on balance precheck")
		return nil, fmt.Errorf("fare %.2f exceeds balance %.2f: %w", estimate, balance, ledger.ErrInsufficientBalance)
	}

	return c.api.RequestRide(ctx, riderID, pickup, destination)
}
