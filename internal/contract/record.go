package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Record is a raw market item as stored by the contract.
type Record struct {
	TokenID *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int // wei
	Sold    bool
}

// marketItemTuple mirrors the ABI tuple layout; field names must match the
// camel-cased ABI component names.
type marketItemTuple struct {
	TokenId *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int
	Sold    bool
}

func (t marketItemTuple) record() Record {
	return Record{
		TokenID: t.TokenId,
		Seller:  t.Seller,
		Owner:   t.Owner,
		Price:   t.Price,
		Sold:    t.Sold,
	}
}

// Receipt is the result of a confirmed state-changing call.
type Receipt struct {
	Method      string      `json:"method"`
	TxHash      common.Hash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`
	// TokenID is set when the transaction emitted MarketItemCreated.
	TokenID int64 `json:"tokenId,omitempty"`
}
