// Package ledger wraps the external value-transfer ledger: balance queries,
// the escrow contract call, and direct value transfers. The ledger is
// append-only and not owned by this system; writes are one-way and never
// retried here.
package ledger

import (
	"context"
	"errors"
	"math/big"
)

var (
	// ErrUnavailable is returned when the ledger node cannot be reached or
	// a call times out.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrInsufficientBalance is returned when an address does not hold
	// enough funds for a transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrContractUninitialized is returned when no escrow contract address
	// is known for the active network.
	ErrContractUninitialized = errors.New("no contract address for active network")
)

// GasParams carries the gas settings for a ledger write.
type GasParams struct {
	Gas      uint64 // gas limit; 0 lets the node estimate
	GasPrice uint64 // in wei
}

// Client is the low-level RPC surface of the ledger node.
type Client interface {
	// NetworkID returns the identifier of the active network.
	NetworkID(ctx context.Context) (string, error)

	// Accounts lists the node's managed account addresses.
	Accounts(ctx context.Context) ([]string, error)

	// GetBalance returns the balance of an address in wei.
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// Call submits a contract call transaction and returns the tx hash.
	Call(ctx context.Context, contract string, data []byte, from string, gas GasParams) (string, error)

	// Transfer moves amountWei from one address to another and returns
	// the tx hash.
	Transfer(ctx context.Context, from, to string, amountWei *big.Int, gas GasParams) (string, error)
}

var weiPerUnit = new(big.Float).SetFloat64(1e18)

// ToWei converts a whole-unit amount to wei.
func ToWei(amount float64) *big.Int {
	f := new(big.Float).SetFloat64(amount)
	f.Mul(f, weiPerUnit)
	wei, _ := f.Int(nil)
	return wei
}

// FromWei converts a wei amount to whole units.
func FromWei(wei *big.Int) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, weiPerUnit)
	out, _ := f.Float64()
	return out
}
