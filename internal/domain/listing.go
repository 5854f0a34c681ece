package domain

import "strings"

// ListingRequest is the user input for minting a token and listing it for sale.
type ListingRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"` // human-readable decimal, e.g. "1.5"
	ImageLocator string `json:"image"`
}

// IsComplete reports whether every field is present.
func (r ListingRequest) IsComplete() bool {
	return strings.TrimSpace(r.Name) != "" &&
		strings.TrimSpace(r.Description) != "" &&
		strings.TrimSpace(r.Price) != "" &&
		strings.TrimSpace(r.ImageLocator) != ""
}

// Document builds the metadata document persisted to the metadata store.
func (r ListingRequest) Document() MetadataDocument {
	return MetadataDocument{
		Name:        r.Name,
		Description: r.Description,
		Image:       r.ImageLocator,
	}
}

// MetadataDocument is the off-chain JSON payload addressed by a token's locator.
type MetadataDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
