package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chainride/internal/domain"
	"chainride/internal/service"
)

// SettlementHandler exposes settlement outcomes for operators.
type SettlementHandler struct {
	settlements *service.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlements *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// SettlementResponse is the HTTP representation of a settlement outcome.
type SettlementResponse struct {
	RideID    string           `json:"ride_id"`
	Receipt   *ReceiptResponse `json:"receipt,omitempty"`
	Error     string           `json:"error,omitempty"`
	Cancelled bool             `json:"cancelled"`
	RideDone  bool             `json:"ride_done"`
}

// ReceiptResponse mirrors the per-phase record of a settlement.
type ReceiptResponse struct {
	RiderAddress     string  `json:"rider_address"`
	DriverAddress    string  `json:"driver_address"`
	Fare             float64 `json:"fare"`
	EscrowTxHash     string  `json:"escrow_tx_hash,omitempty"`
	EscrowRecorded   bool    `json:"escrow_recorded"`
	TransferTxHash   string  `json:"transfer_tx_hash,omitempty"`
	TransferRecorded bool    `json:"transfer_recorded"`
}

func toReceiptResponse(r *domain.SettlementReceipt) *ReceiptResponse {
	if r == nil {
		return nil
	}
	return &ReceiptResponse{
		RiderAddress:     r.RiderAddress,
		DriverAddress:    r.DriverAddress,
		Fare:             r.Fare,
		EscrowTxHash:     r.EscrowTxHash,
		EscrowRecorded:   r.EscrowRecorded,
		TransferTxHash:   r.TransferTxHash,
		TransferRecorded: r.TransferRecorded,
	}
}

// GetOutcome handles GET /v1/settlements/:rideId
func (h *SettlementHandler) GetOutcome(c *gin.Context) {
	rideID := c.Param("rideId")

	outcome, ok := h.settlements.Outcome(rideID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no settlement recorded for ride"})
		return
	}

	resp := SettlementResponse{
		RideID:    outcome.RideID,
		Receipt:   toReceiptResponse(outcome.Receipt),
		Cancelled: outcome.Cancelled,
		RideDone:  outcome.RideDone,
	}
	if outcome.SettleErr != nil {
		resp.Error = outcome.SettleErr.Error()
	}

	respondJSON(c, http.StatusOK, resp)
}

// CancelCompletion handles POST /v1/settlements/:rideId/cancel
func (h *SettlementHandler) CancelCompletion(c *gin.Context) {
	rideID := c.Param("rideId")

	if !h.settlements.Cancel(rideID) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no pending settlement for ride"})
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "settlement completion cancelled"})
}
