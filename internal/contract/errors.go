package contract

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/domain"
)

// ErrReverted is the cause of a TxError whose receipt reports failure.
var ErrReverted = errors.New("execution reverted")

// TxError describes a failed state-changing call. It matches
// domain.ErrTransactionFailure and unwraps to its cause.
type TxError struct {
	Method string
	// Hash is zero when the transaction was never broadcast.
	Hash common.Hash
	Err  error
}

func (e *TxError) Error() string {
	if e.Hash == (common.Hash{}) {
		return fmt.Sprintf("%s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s tx %s: %v", e.Method, e.Hash.Hex(), e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// Is reports whether target is domain.ErrTransactionFailure.
func (e *TxError) Is(target error) bool {
	return target == domain.ErrTransactionFailure
}
