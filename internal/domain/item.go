package domain

// MarketItem joins one on-chain market record with its off-chain metadata.
// Items are rebuilt on every fetch and never mutated.
type MarketItem struct {
	TokenID         int64  `json:"tokenId"`
	Seller          string `json:"seller"`
	Owner           string `json:"owner"`
	Price           string `json:"price"` // human-readable, see ToDecimal
	Name            string `json:"name"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	MetadataLocator string `json:"tokenURI"`
}

// ListingKind selects which of the caller's items BrowseMine returns.
type ListingKind string

const (
	// KindListed are items the caller has listed and not yet sold.
	KindListed ListingKind = "listed"
	// KindOwned are items the caller has bought.
	KindOwned ListingKind = "owned"
)

// String returns the string representation of ListingKind.
func (k ListingKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a valid value.
func (k ListingKind) IsValid() bool {
	return k == KindListed || k == KindOwned
}
