// Package metadata stores listing documents in a content-addressed store
// and fetches them back by locator.
package metadata

import (
	"context"

	"github.com/ipfs/go-cid"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("metadata")

// Backend stores bytes and returns their content identifier.
type Backend interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
}
