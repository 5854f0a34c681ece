package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
)

// IPFSBackend adds content through the Kubo HTTP RPC API.
type IPFSBackend struct {
	apiURL string
	client *http.Client
}

var _ Backend = (*IPFSBackend)(nil)

// NewIPFSBackend creates a backend for the node API at apiURL
// (for example http://127.0.0.1:5001).
func NewIPFSBackend(apiURL string, client *http.Client) *IPFSBackend {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &IPFSBackend{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: client,
	}
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Put adds and pins data as a CIDv1 object.
func (b *IPFSBackend) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "metadata.json")
	if err != nil {
		return cid.Undef, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return cid.Undef, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return cid.Undef, fmt.Errorf("close multipart: %w", err)
	}

	url := b.apiURL + "/api/v0/add?cid-version=1&pin=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return cid.Undef, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return cid.Undef, fmt.Errorf("ipfs add: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return cid.Undef, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return cid.Undef, fmt.Errorf("ipfs add: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var added addResponse
	if err := json.Unmarshal(respBody, &added); err != nil {
		return cid.Undef, fmt.Errorf("decode add response: %w", err)
	}

	c, err := cid.Decode(added.Hash)
	if err != nil {
		return cid.Undef, fmt.Errorf("parse cid %q: %w", added.Hash, err)
	}
	return c, nil
}
