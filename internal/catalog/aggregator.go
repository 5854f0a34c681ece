// Package catalog joins on-chain market records with their off-chain
// metadata documents.
package catalog

import (
	"context"
	"fmt"
	"math/big"

	logging "github.com/op/go-logging"
	"golang.org/x/sync/errgroup"

	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
)

var log = logging.MustGetLogger("catalog")

// TokenSource returns a token's metadata locator.
type TokenSource interface {
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
}

// DocumentFetcher retrieves a metadata document by locator.
type DocumentFetcher interface {
	Fetch(ctx context.Context, locator string) (domain.MetadataDocument, error)
}

// Aggregator resolves records into market items.
type Aggregator struct {
	tokens         TokenSource
	documents      DocumentFetcher
	maxConcurrency int
	metrics        *observability.Metrics
}

// Option configures Aggregator.
type Option func(*Aggregator)

// WithMaxConcurrency caps concurrent resolutions. Zero means one goroutine
// per record.
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) {
		a.maxConcurrency = n
	}
}

// WithMetrics records batch outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// NewAggregator creates an Aggregator.
func NewAggregator(tokens TokenSource, documents DocumentFetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		tokens:    tokens,
		documents: documents,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve builds one MarketItem per record, in input order. If any record
// fails to resolve, the whole batch fails with domain.ErrResolutionFailure
// and no items.
func (a *Aggregator) Resolve(ctx context.Context, records []contract.Record) ([]domain.MarketItem, error) {
	items := make([]domain.MarketItem, len(records))
	if len(records) == 0 {
		return items, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.maxConcurrency > 0 {
		g.SetLimit(a.maxConcurrency)
	}

	for i, rec := range records {
		g.Go(func() error {
			item, err := a.resolveOne(gctx, rec)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.metrics.RecordResolution(0, err)
		log.Errorf("catalog resolution failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrResolutionFailure, err)
	}

	a.metrics.RecordResolution(len(items), nil)
	return items, nil
}

func (a *Aggregator) resolveOne(ctx context.Context, rec contract.Record) (domain.MarketItem, error) {
	if rec.TokenID == nil {
		return domain.MarketItem{}, fmt.Errorf("record without token id")
	}
	if !rec.TokenID.IsInt64() || rec.TokenID.Sign() < 0 {
		return domain.MarketItem{}, fmt.Errorf("token id %s out of range", rec.TokenID)
	}

	locator, err := a.tokens.TokenURI(ctx, rec.TokenID)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("token %s: locator: %w", rec.TokenID, err)
	}

	doc, err := a.documents.Fetch(ctx, locator)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("token %s: metadata: %w", rec.TokenID, err)
	}

	return domain.MarketItem{
		TokenID:         rec.TokenID.Int64(),
		Seller:          rec.Seller.Hex(),
		Owner:           rec.Owner.Hex(),
		Price:           domain.ToDecimal(rec.Price),
		Name:            doc.Name,
		Description:     doc.Description,
		Image:           doc.Image,
		MetadataLocator: locator,
	}, nil
}
