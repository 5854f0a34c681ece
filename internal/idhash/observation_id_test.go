package idhash

import (
	"testing"
)

func TestComputeObservationID(t *testing.T) {
	tests := []struct {
		name       string
		tokenID    int64
		seller     string
		price      string
		observedAt int64
	}{
		{
			name:       "first listing",
			tokenID:    1,
			seller:     "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
			price:      "1.5",
			observedAt: 1704067234567,
		},
		{
			name:       "fractional price",
			tokenID:    42,
			seller:     "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
			price:      "0.000000000000000001",
			observedAt: 1704067300000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeObservationID(tt.tokenID, tt.seller, tt.price, tt.observedAt)

			if len(got) != 64 {
				t.Errorf("ComputeObservationID() length = %d, want 64", len(got))
			}

			got2 := ComputeObservationID(tt.tokenID, tt.seller, tt.price, tt.observedAt)
			if got != got2 {
				t.Errorf("ComputeObservationID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeObservationID_SellerCaseInsensitive(t *testing.T) {
	a := ComputeObservationID(1, "0xABCDEF", "1", 100)
	b := ComputeObservationID(1, "0xabcdef", "1", 100)
	if a != b {
		t.Errorf("checksummed and lowercase sellers should hash equally")
	}
}

func TestComputeObservationID_Uniqueness(t *testing.T) {
	base := ComputeObservationID(1, "0xabc", "1.5", 1000)

	variants := map[string]string{
		"token":  ComputeObservationID(2, "0xabc", "1.5", 1000),
		"seller": ComputeObservationID(1, "0xdef", "1.5", 1000),
		"price":  ComputeObservationID(1, "0xabc", "1.6", 1000),
		"time":   ComputeObservationID(1, "0xabc", "1.5", 1001),
	}

	for field, v := range variants {
		if v == base {
			t.Errorf("changing %s should change the id", field)
		}
	}
}
