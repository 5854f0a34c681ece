// Package wallet manages the user's wallet session: provider access,
// account state and the signer handed to the contract gateway.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("wallet")

// Provider is an external wallet able to authorize accounts and sign.
type Provider interface {
	// Accounts returns the already authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)

	// RequestAccounts prompts the user to authorize accounts.
	RequestAccounts(ctx context.Context) ([]string, error)

	// SendTransaction signs msg with msg.From and broadcasts it.
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
}
