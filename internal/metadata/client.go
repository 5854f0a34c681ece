package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
)

// maxDocumentSize bounds fetched metadata documents.
const maxDocumentSize = 1 << 20

// Client uploads metadata documents and fetches them by locator.
type Client struct {
	backend    Backend
	gatewayURL string
	http       *http.Client
	metrics    *observability.Metrics
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets the client used for fetches.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithMetrics records upload and fetch outcomes.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// NewClient creates a Client storing into backend. Locators are built as
// <gatewayURL>/ipfs/<cid>.
func NewClient(backend Backend, gatewayURL string, opts ...ClientOption) *Client {
	c := &Client{
		backend:    backend,
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores doc and returns its gateway locator. Failures wrap
// domain.ErrUploadFailure.
func (c *Client) Upload(ctx context.Context, doc domain.MetadataDocument) (locator string, err error) {
	defer func() {
		c.metrics.RecordUpload(err)
		if err != nil {
			log.Errorf("Error uploading file: %v", err)
		}
	}()

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: encode document: %v", domain.ErrUploadFailure, err)
	}

	id, err := c.backend.Put(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUploadFailure, err)
	}
	if !id.Defined() {
		return "", fmt.Errorf("%w: store returned no identifier", domain.ErrUploadFailure)
	}

	locator = c.gatewayURL + "/ipfs/" + id.String()
	log.Debugf("uploaded metadata %q to %s", doc.Name, locator)
	return locator, nil
}

// Fetch retrieves and decodes the document at locator with a plain GET.
// ipfs:// locators are read through the configured gateway.
func (c *Client) Fetch(ctx context.Context, locator string) (doc domain.MetadataDocument, err error) {
	defer func() {
		c.metrics.RecordFetch(err)
	}()

	url := c.resolve(locator)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return doc, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return doc, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))
		return doc, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&doc); err != nil {
		return domain.MetadataDocument{}, fmt.Errorf("decode %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) resolve(locator string) string {
	if rest, ok := strings.CutPrefix(locator, "ipfs://"); ok {
		rest = strings.TrimPrefix(rest, "ipfs/")
		return c.gatewayURL + "/ipfs/" + rest
	}
	return locator
}
