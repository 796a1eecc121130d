package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// RPCClient talks JSON-RPC to an Ethereum-compatible ledger node.
//
// Transactions are signed by the node itself (unlocked accounts on a
// development chain), so only eth_sendTransaction is needed for writes.
type RPCClient struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

// Ensure RPCClient implements Client.
var _ Client = (*RPCClient)(nil)

// NewRPCClient creates a client for the node at url. Every call is bounded
// by timeout; a timeout is reported as ErrUnavailable.
func NewRPCClient(url string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip and decodes the result into out.
func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status %d", ErrUnavailable, method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}

	if rpcResp.Error != nil {
		return classifyRPCError(method, rpcResp.Error)
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("%s: decoding result: %w", method, err)
		}
	}

	return nil
}

// classifyRPCError maps node-side errors onto the package sentinels.
func classifyRPCError(method string, e *rpcError) error {
	msg := strings.ToLower(e.Message)
	if strings.Contains(msg, "insufficient funds") || strings.Contains(msg, "insufficient balance") {
		return fmt.Errorf("%w: %s: %s", ErrInsufficientBalance, method, e.Message)
	}
	return fmt.Errorf("%w: %s: rpc error %d: %s", ErrUnavailable, method, e.Code, e.Message)
}

// NetworkID returns the active network identifier (net_version).
func (c *RPCClient) NetworkID(ctx context.Context) (string, error) {
	var id string
	if err := c.call(ctx, "net_version", []any{}, &id); err != nil {
		return "", err
	}
	return id, nil
}

// Accounts lists the node's managed accounts (eth_accounts).
func (c *RPCClient) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, "eth_accounts", []any{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance returns an address's balance in wei (eth_getBalance, latest).
func (c *RPCClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	var hexBalance string
	if err := c.call(ctx, "eth_getBalance", []any{address, "latest"}, &hexBalance); err != nil {
		return nil, err
	}
	return parseHexBig(hexBalance)
}

// txParams is the parameter object for eth_sendTransaction.
type txParams struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value,omitempty"`
	Data     string `json:"data,omitempty"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
}

// Call submits a contract call transaction from the given address.
func (c *RPCClient) Call(ctx context.Context, contract string, data []byte, from string, gas GasParams) (string, error) {
	params := txParams{
		From:     from,
		To:       contract,
		Data:     "0x" + hex.EncodeToString(data),
		Gas:      hexUint(gas.Gas),
		GasPrice: hexUint(gas.GasPrice),
	}

	var txHash string
	if err := c.call(ctx, "eth_sendTransaction", []any{params}, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}

// Transfer moves amountWei between two addresses.
func (c *RPCClient) Transfer(ctx context.Context, from, to string, amountWei *big.Int, gas GasParams) (string, error) {
	params := txParams{
		From:     from,
		To:       to,
		Value:    "0x" + amountWei.Text(16),
		Gas:      hexUint(gas.Gas),
		GasPrice: hexUint(gas.GasPrice),
	}

	var txHash string
	if err := c.call(ctx, "eth_sendTransaction", []any{params}, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}

func hexUint(v uint64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("0x%x", v)
}

func parseHexBig(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("malformed hex quantity %q", s)
	}
	return v, nil
}
