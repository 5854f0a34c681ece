package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/ethrpc"
)

// EIP-1193 provider error codes.
const (
	codeUserRejected = 4001
	codeUnauthorized = 4100
)

// Caller performs a JSON-RPC call. *ethrpc.HTTPClient satisfies it.
type Caller interface {
	Call(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

// RPCProvider is a wallet reached over JSON-RPC, such as a browser-wallet
// bridge, Clef, or a development node with unlocked accounts.
type RPCProvider struct {
	rpc Caller
}

var _ Provider = (*RPCProvider)(nil)

// NewRPCProvider creates a provider calling rpc.
func NewRPCProvider(rpc Caller) *RPCProvider {
	return &RPCProvider{rpc: rpc}
}

// Accounts calls eth_accounts.
func (p *RPCProvider) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.rpc.Call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// RequestAccounts calls eth_requestAccounts.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.rpc.Call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// SendTransaction calls eth_sendTransaction; the wallet signs.
func (p *RPCProvider) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	tx := map[string]interface{}{
		"from": msg.From,
	}
	if msg.To != nil {
		tx["to"] = msg.To
	}
	if msg.Value != nil {
		tx["value"] = (*hexutil.Big)(msg.Value)
	}
	if len(msg.Data) > 0 {
		tx["data"] = hexutil.Bytes(msg.Data)
	}
	if msg.Gas > 0 {
		tx["gas"] = hexutil.Uint64(msg.Gas)
	}

	var hash common.Hash
	if err := p.rpc.Call(ctx, &hash, "eth_sendTransaction", tx); err != nil {
		return common.Hash{}, classify(err)
	}
	return hash, nil
}

// classify maps wallet rejections to domain.ErrUserDeclined.
func classify(err error) error {
	if rpcErr, ok := ethrpc.AsError(err); ok {
		msg := strings.ToLower(rpcErr.Message)
		if rpcErr.Code == codeUserRejected || rpcErr.Code == codeUnauthorized ||
			strings.Contains(msg, "request denied") || strings.Contains(msg, "user rejected") {
			return fmt.Errorf("%w: %s", domain.ErrUserDeclined, rpcErr.Message)
		}
	}
	return err
}
