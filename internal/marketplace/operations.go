package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/idhash"
	"nft-marketplace/internal/storage"
)

// Listing is the result of MintAndList.
type Listing struct {
	TokenID         int64  `json:"tokenId"`
	MetadataLocator string `json:"tokenURI"`
	Price           string `json:"price"`
	TxHash          string `json:"txHash"`
	BlockNumber     uint64 `json:"blockNumber"`
}

// MintAndList uploads the listing's metadata and then mints and lists the
// token. An incomplete request touches no collaborator and returns
// domain.ErrIncompleteListing. A failed upload never reaches the contract.
func (s *Service) MintAndList(ctx context.Context, req domain.ListingRequest) (listing *Listing, err error) {
	defer s.track("mint_and_list", time.Now(), &err)

	if !req.IsComplete() {
		return nil, domain.ErrIncompleteListing
	}
	if _, err := domain.ToSmallestUnit(req.Price); err != nil {
		return nil, err
	}

	gw, err := s.signer()
	if err != nil {
		return nil, err
	}

	locator, err := s.uploader.Upload(ctx, req.Document())
	if err != nil {
		return nil, err
	}

	rcpt, err := gw.CreateListing(ctx, locator, req.Price)
	s.record(ctx, journalEntry{
		op:      domain.OpMintAndList,
		price:   req.Price,
		locator: locator,
		receipt: rcpt,
		err:     err,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("listed token %d at %s %s", rcpt.TokenID, req.Price, domain.Currency)
	return &Listing{
		TokenID:         rcpt.TokenID,
		MetadataLocator: locator,
		Price:           req.Price,
		TxHash:          rcpt.TxHash.Hex(),
		BlockNumber:     rcpt.BlockNumber,
	}, nil
}

// BrowseAll returns every unsold listing. Works without a wallet.
func (s *Service) BrowseAll(ctx context.Context) (items []domain.MarketItem, err error) {
	defer s.track("browse_all", time.Now(), &err)

	records, err := s.contract.QueryAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	items, err = s.resolver.Resolve(ctx, records)
	if err != nil {
		return nil, err
	}

	s.observe(ctx, items)
	return items, nil
}

// BrowseMine returns the caller's listed or owned items.
func (s *Service) BrowseMine(ctx context.Context, kind domain.ListingKind) (items []domain.MarketItem, err error) {
	defer s.track("browse_mine", time.Now(), &err)

	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	gw, err := s.signer()
	if err != nil {
		return nil, err
	}

	var records []contract.Record
	if kind == domain.KindListed {
		records, err = gw.QueryOwnedListings(ctx)
	} else {
		records, err = gw.QueryOwnedTokens(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s items: %w", kind, err)
	}

	return s.resolver.Resolve(ctx, records)
}

// Purchase buys item at its listed price.
func (s *Service) Purchase(ctx context.Context, item domain.MarketItem) (rcpt *contract.Receipt, err error) {
	defer s.track("purchase", time.Now(), &err)

	if _, err := domain.ToSmallestUnit(item.Price); err != nil {
		return nil, err
	}

	gw, err := s.signer()
	if err != nil {
		return nil, err
	}

	rcpt, err = gw.CreateSale(ctx, item.TokenID, item.Price)
	s.record(ctx, journalEntry{
		op:      domain.OpPurchase,
		tokenID: item.TokenID,
		price:   item.Price,
		locator: item.MetadataLocator,
		receipt: rcpt,
		err:     err,
	})
	if err != nil {
		return nil, err
	}
	return rcpt, nil
}

// Resell relists an owned token at price.
func (s *Service) Resell(ctx context.Context, tokenID int64, price string) (rcpt *contract.Receipt, err error) {
	defer s.track("resell", time.Now(), &err)

	if _, err := domain.ToSmallestUnit(price); err != nil {
		return nil, err
	}

	gw, err := s.signer()
	if err != nil {
		return nil, err
	}

	rcpt, err = gw.ResellToken(ctx, tokenID, price)
	s.record(ctx, journalEntry{
		op:      domain.OpResell,
		tokenID: tokenID,
		price:   price,
		receipt: rcpt,
		err:     err,
	})
	if err != nil {
		return nil, err
	}
	return rcpt, nil
}

// ListingFee returns the listing fee in human units.
func (s *Service) ListingFee(ctx context.Context) (string, error) {
	fee, err := s.contract.GetListingFee(ctx)
	if err != nil {
		return "", fmt.Errorf("get listing fee: %w", err)
	}
	return domain.ToDecimal(fee), nil
}

// History returns the journal of the connected account.
func (s *Service) History(ctx context.Context) ([]*domain.Transaction, error) {
	account := s.session.Account()
	if account.IsEmpty() {
		return nil, domain.ErrNotConnected
	}
	if s.journal == nil {
		return []*domain.Transaction{}, nil
	}
	return s.journal.GetByAccount(ctx, account.String())
}

type journalEntry struct {
	op      domain.TxOperation
	tokenID int64
	price   string
	locator string
	receipt *contract.Receipt
	err     error
}

// record appends a journal entry. Journal failures are logged only.
func (s *Service) record(ctx context.Context, e journalEntry) {
	if s.journal == nil {
		return
	}

	tx := &domain.Transaction{
		ID:              uuid.NewString(),
		Operation:       e.op,
		Account:         s.session.Account().String(),
		TokenID:         e.tokenID,
		Price:           e.price,
		MetadataLocator: e.locator,
		Status:          domain.TxConfirmed,
		CreatedAt:       s.now().UnixMilli(),
	}
	if e.receipt != nil {
		tx.TxHash = e.receipt.TxHash.Hex()
		tx.BlockNumber = e.receipt.BlockNumber
		if e.receipt.TokenID != 0 {
			tx.TokenID = e.receipt.TokenID
		}
	}
	if e.err != nil {
		tx.Status = domain.TxFailed
		tx.Error = e.err.Error()
		var txErr *contract.TxError
		if errors.As(e.err, &txErr) && txErr.Hash != (common.Hash{}) {
			tx.TxHash = txErr.Hash.Hex()
		}
	}

	if err := s.journal.Insert(ctx, tx); err != nil {
		log.Errorf("journal %s: %v", e.op, err)
	}
}

// observe stores the asking price of each browsed item.
func (s *Service) observe(ctx context.Context, items []domain.MarketItem) {
	if s.observations == nil || len(items) == 0 {
		return
	}

	observedAt := s.now().UnixMilli()
	batch := make([]*domain.PriceObservation, 0, len(items))
	for _, item := range items {
		batch = append(batch, &domain.PriceObservation{
			ObservationID: idhash.ComputeObservationID(item.TokenID, item.Seller, item.Price, observedAt),
			TokenID:       item.TokenID,
			Seller:        item.Seller,
			Price:         item.Price,
			ObservedAt:    observedAt,
		})
	}

	if err := s.observations.InsertBulk(ctx, batch); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			log.Debugf("price observations at %d already stored", observedAt)
			return
		}
		log.Errorf("store price observations: %v", err)
	}
}
