package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingRequest_IsComplete(t *testing.T) {
	full := ListingRequest{Name: "Art#1", Description: "demo", Price: "1.5", ImageLocator: "locator123"}
	assert.True(t, full.IsComplete())

	missing := []ListingRequest{
		{Description: "demo", Price: "1.5", ImageLocator: "locator123"},
		{Name: "Art#1", Price: "1.5", ImageLocator: "locator123"},
		{Name: "Art#1", Description: "demo", ImageLocator: "locator123"},
		{Name: "Art#1", Description: "demo", Price: "1.5"},
		{Name: " ", Description: "demo", Price: "1.5", ImageLocator: "locator123"},
	}
	for _, r := range missing {
		assert.False(t, r.IsComplete(), "%+v", r)
	}
}

func TestListingRequest_Document(t *testing.T) {
	r := ListingRequest{Name: "Art#1", Description: "demo", Price: "1.5", ImageLocator: "locator123"}

	assert.Equal(t, MetadataDocument{Name: "Art#1", Description: "demo", Image: "locator123"}, r.Document())
}
