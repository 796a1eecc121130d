package ledger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
)

// Gateway performs the two-phase settlement against the ledger:
// an escrow contract call followed by a direct value transfer. The two
// phases share no atomicity; the returned receipt records how far the
// settlement got even when an error is also returned.
type Gateway struct {
	client    Client
	contracts map[string]string // network id -> escrow contract address
	callGas   GasParams
	xferGas   GasParams
	log       *logrus.Logger
}

// GatewayConfig holds the gateway's static settings.
type GatewayConfig struct {
	// Contracts maps network ids to deployed escrow contract addresses.
	Contracts map[string]string

	// GasLimit and GasPriceWei apply to the value transfer; the escrow
	// call uses GasPriceWei with node-side gas estimation.
	GasLimit    uint64
	GasPriceWei uint64
}

// NewGateway creates a Gateway over the given ledger client.
func NewGateway(client Client, cfg GatewayConfig, log *logrus.Logger) *Gateway {
	return &Gateway{
		client:    client,
		contracts: cfg.Contracts,
		callGas:   GasParams{GasPrice: cfg.GasPriceWei},
		xferGas:   GasParams{Gas: cfg.GasLimit, GasPrice: cfg.GasPriceWei},
		log:       log,
	}
}

// Balance returns an address's balance in whole units.
func (g *Gateway) Balance(ctx context.Context, address string) (float64, error) {
	wei, err := g.client.GetBalance(ctx, address)
	if err != nil {
		return 0, err
	}
	return FromWei(wei), nil
}

// Settle runs both settlement phases for a ride's fare. It returns the
// receipt alongside any error so callers can inspect partial completion:
// escrow may be recorded on-ledger even when the transfer failed.
func (g *Gateway) Settle(ctx context.Context, riderAddress, driverAddress string, fare float64) (*domain.SettlementReceipt, error) {
	receipt := &domain.SettlementReceipt{
		RiderAddress:  riderAddress,
		DriverAddress: driverAddress,
		Fare:          fare,
	}

	contract, err := g.activeContract(ctx)
	if err != nil {
		return receipt, err
	}

	fareWei := ToWei(fare)

	// Phase one: record the counterparty and amount on the escrow contract.
	data, err := escrowCallData(driverAddress, fareWei)
	if err != nil {
		return receipt, err
	}

	escrowTx, err := g.client.Call(ctx, contract, data, riderAddress, g.callGas)
	if err != nil {
		return receipt, err
	}
	receipt.EscrowTxHash = escrowTx
	receipt.EscrowRecorded = true

	// Phase two: transfer the fare from rider to driver.
	transferTx, err := g.client.Transfer(ctx, riderAddress, driverAddress, fareWei, g.xferGas)
	if err != nil {
		return receipt, err
	}
	receipt.TransferTxHash = transferTx
	receipt.TransferRecorded = true
	receipt.CompletedAt = time.Now()

	g.recordBalances(ctx, receipt)

	return receipt, nil
}

// activeContract resolves the escrow contract address for the network the
// node reports.
func (g *Gateway) activeContract(ctx context.Context) (string, error) {
	networkID, err := g.client.NetworkID(ctx)
	if err != nil {
		return "", err
	}

	contract, ok := g.contracts[networkID]
	if !ok || contract == "" {
		return "", ErrContractUninitialized
	}
	return contract, nil
}

// recordBalances attaches post-transfer balances to the receipt, best
// effort. Failures are logged, not surfaced.
func (g *Gateway) recordBalances(ctx context.Context, receipt *domain.SettlementReceipt) {
	riderBal, err := g.Balance(ctx, receipt.RiderAddress)
	if err != nil {
		g.log.WithError(err).WithField("address", receipt.RiderAddress).
			Warn("failed to read rider balance after transfer")
		return
	}

	driverBal, err := g.Balance(ctx, receipt.DriverAddress)
	if err != nil {
		g.log.WithError(err).WithField("address", receipt.DriverAddress).
			Warn("failed to read driver balance after transfer")
		return
	}

	receipt.RiderBalanceAfter = riderBal
	receipt.DriverBalanceAfter = driverBal

	g.log.WithFields(logrus.Fields{
		"rider_balance":  riderBal,
		"driver_balance": driverBal,
	}).Info("settlement transfer confirmed")
}
