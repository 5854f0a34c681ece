package domain

// PriceObservation records the asking price of a listed item at the time
// the catalog was browsed.
type PriceObservation struct {
	ObservationID string `json:"observationId"` // deterministic, see idhash
	TokenID       int64  `json:"tokenId"`
	Seller        string `json:"seller"`
	Price         string `json:"price"`      // human units
	ObservedAt    int64  `json:"observedAt"` // unix ms
}
