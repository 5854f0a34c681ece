package contract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"nft-marketplace/internal/ethrpc"
	"nft-marketplace/internal/observability"
)

// DefaultPollInterval is how often a pending transaction's receipt is polled.
const DefaultPollInterval = 2 * time.Second

// ReceiptSource looks up transaction receipts. It returns ethereum.NotFound
// while the transaction is pending.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Confirmer waits for broadcast transactions to be included in a block.
// Polling is periodic; Follow lets new chain heads trigger an early poll.
type Confirmer struct {
	source   ReceiptSource
	interval time.Duration
	metrics  *observability.Metrics

	mu   sync.Mutex
	wake chan struct{}
}

// NewConfirmer creates a Confirmer polling source every interval.
func NewConfirmer(source ReceiptSource, interval time.Duration, metrics *observability.Metrics) *Confirmer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Confirmer{
		source:   source,
		interval: interval,
		metrics:  metrics,
		wake:     make(chan struct{}),
	}
}

// Follow wakes every waiter on each head received until heads is closed or
// ctx is done.
func (c *Confirmer) Follow(ctx context.Context, heads <-chan ethrpc.Head) {
	for {
		select {
		case <-ctx.Done():
			return
		case head, ok := <-heads:
			if !ok {
				return
			}
			if head.Number != nil {
				log.Debugf("new head %s, polling pending receipts", head.Number)
			}
			c.broadcast()
		}
	}
}

func (c *Confirmer) broadcast() {
	c.mu.Lock()
	close(c.wake)
	c.wake = make(chan struct{})
	c.mu.Unlock()
}

func (c *Confirmer) wakeCh() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wake
}

// Wait blocks until the receipt for hash is available or ctx is done.
// A reverted receipt is returned without error; the caller decides.
func (c *Confirmer) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	start := time.Now()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		wake := c.wakeCh()

		receipt, err := c.source.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			c.metrics.RecordConfirmation(time.Since(start).Seconds())
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("receipt lookup: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		case <-wake:
		}
	}
}
