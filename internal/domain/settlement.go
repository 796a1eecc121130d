package domain

import "time"

// SettlementReceipt records the two-phase ledger interaction for a ride:
// the escrow contract call and the direct value transfer. The two phases
// share no atomicity on the ledger, so each phase is recorded separately
// and partial completion is inspectable.
type SettlementReceipt struct {
	RiderAddress  string
	DriverAddress string
	Fare          float64

	EscrowTxHash   string
	EscrowRecorded bool

	TransferTxHash   string
	TransferRecorded bool

	// Post-transfer balances, best effort. Zero when the balance query
	// itself failed.
	RiderBalanceAfter  float64
	DriverBalanceAfter float64

	CompletedAt time.Time
}
