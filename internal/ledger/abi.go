package ledger

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// escrowMethod is the contract method recording the ride's counterparty
// and amount on-ledger before the value transfer.
const escrowMethod = "startRide(address,uint256)"

// methodSelector returns the 4-byte ABI selector for a method signature.
func methodSelector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// escrowCallData ABI-encodes the escrow call: selector followed by the
// driver address and the fare amount, each left-padded to 32 bytes.
func escrowCallData(driverAddress string, amountWei *big.Int) ([]byte, error) {
	addr, err := decodeAddress(driverAddress)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 4+32+32)
	data = append(data, methodSelector(escrowMethod)...)
	data = append(data, leftPad32(addr)...)
	data = append(data, leftPad32(amountWei.Bytes())...)
	return data, nil
}

func decodeAddress(address string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(address, "0x"))
	if err != nil {
		return nil, fmt.Errorf("malformed address %q: %w", address, err)
	}
	if len(raw) != 20 {
		return nil, fmt.Errorf("malformed address %q: %d bytes", address, len(raw))
	}
	return raw, nil
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}
