package domain

// TxOperation names the facade operation that produced a transaction.
type TxOperation string

const (
	OpMintAndList TxOperation = "MINT_AND_LIST"
	OpPurchase    TxOperation = "PURCHASE"
	OpResell      TxOperation = "RESELL"
)

// String returns the string representation of TxOperation.
func (o TxOperation) String() string {
	return string(o)
}

// IsValid checks if the operation is a valid value.
func (o TxOperation) IsValid() bool {
	switch o {
	case OpMintAndList, OpPurchase, OpResell:
		return true
	}
	return false
}

// TxStatus is the final outcome of a submitted transaction.
type TxStatus string

const (
	TxConfirmed TxStatus = "CONFIRMED"
	TxFailed    TxStatus = "FAILED"
)

// String returns the string representation of TxStatus.
func (s TxStatus) String() string {
	return string(s)
}

// Transaction is a journal entry for one state-changing marketplace call.
// Entries are append-only.
type Transaction struct {
	ID              string      `json:"id"`
	Operation       TxOperation `json:"operation"`
	Account         string      `json:"account"`
	TokenID         int64       `json:"tokenId,omitempty"`
	Price           string      `json:"price"`
	MetadataLocator string      `json:"tokenURI,omitempty"`
	TxHash          string      `json:"txHash,omitempty"`
	BlockNumber     uint64      `json:"blockNumber,omitempty"`
	Status          TxStatus    `json:"status"`
	Error           string      `json:"error,omitempty"`
	CreatedAt       int64       `json:"createdAt"` // unix ms
}
