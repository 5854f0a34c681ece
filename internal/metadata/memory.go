package metadata

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// MemoryBackend is an in-process content-addressed store. It also serves
// stored objects as a gateway under /ipfs/{cid}.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var (
	_ Backend      = (*MemoryBackend)(nil)
	_ http.Handler = (*MemoryBackend)(nil)
)

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		objects: make(map[string][]byte),
	}
}

// Put stores data under its CIDv1 (raw codec, sha2-256).
func (b *MemoryBackend) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	if err := ctx.Err(); err != nil {
		return cid.Undef, err
	}

	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	c := cid.NewCidV1(cid.Raw, sum)

	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	b.objects[c.String()] = stored
	b.mu.Unlock()

	return c, nil
}

// Get returns the object stored under c.
func (b *MemoryBackend) Get(c cid.Cid) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[c.String()]
	return data, ok
}

// Len returns the number of stored objects.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// ServeHTTP serves GET /ipfs/{cid}.
func (b *MemoryBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/ipfs/")
	if raw == r.URL.Path || raw == "" {
		http.NotFound(w, r)
		return
	}

	c, err := cid.Decode(strings.SplitN(raw, "/", 2)[0])
	if err != nil {
		http.Error(w, "invalid cid", http.StatusBadRequest)
		return
	}

	data, ok := b.Get(c)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Etag", `"`+c.String()+`"`)
	w.Write(data)
}
