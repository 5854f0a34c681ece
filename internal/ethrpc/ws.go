package ethrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WSClient defines the WebSocket subscription interface.
type WSClient interface {
	// SubscribeNewHeads subscribes to new chain heads.
	SubscribeNewHeads(ctx context.Context) (<-chan Head, error)

	// Close closes the WebSocket connection.
	Close() error
}

// Head is a newHeads notification.
type Head struct {
	Number *big.Int
	Hash   common.Hash
}
