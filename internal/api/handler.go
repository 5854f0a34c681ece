// Package api exposes the marketplace operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	logging "github.com/op/go-logging"

	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/marketplace"
)

var log = logging.MustGetLogger("api")

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Facade is the set of marketplace operations the API serves.
type Facade interface {
	Account() domain.Account
	State() domain.ConnectionState
	Currency() string
	Connect(ctx context.Context) error
	MintAndList(ctx context.Context, req domain.ListingRequest) (*marketplace.Listing, error)
	BrowseAll(ctx context.Context) ([]domain.MarketItem, error)
	BrowseMine(ctx context.Context, kind domain.ListingKind) ([]domain.MarketItem, error)
	Purchase(ctx context.Context, item domain.MarketItem) (*contract.Receipt, error)
	Resell(ctx context.Context, tokenID int64, price string) (*contract.Receipt, error)
	ListingFee(ctx context.Context) (string, error)
	History(ctx context.Context) ([]*domain.Transaction, error)
}

var _ Facade = (*marketplace.Service)(nil)

// Handler serves the HTTP API.
type Handler struct {
	facade  Facade
	metrics http.Handler
}

// NewHandler creates a Handler. metrics may be nil to omit /metrics.
func NewHandler(facade Facade, metrics http.Handler) *Handler {
	return &Handler{facade: facade, metrics: metrics}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Route("/account", func(r chi.Router) {
		r.Get("/", h.GetAccount)
		r.Post("/connect", h.Connect)
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.BrowseAll)
		r.Post("/", h.MintAndList)
		r.Get("/mine", h.BrowseMine)
		r.Post("/{tokenId}/purchase", h.Purchase)
		r.Post("/{tokenId}/resell", h.Resell)
	})

	r.Get("/listing-fee", h.ListingFee)
	r.Get("/transactions", h.History)

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}
	return r
}

type accountResponse struct {
	Account  string `json:"account"`
	State    string `json:"state"`
	Currency string `json:"currency"`
}

// GetAccount reports the wallet account and connection state.
// GET /account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, accountResponse{
		Account:  h.facade.Account().String(),
		State:    h.facade.State().String(),
		Currency: h.facade.Currency(),
	})
}

// Connect prompts the wallet for an account.
// POST /account/connect
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.Connect(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.GetAccount(w, r)
}

// BrowseAll lists every unsold item.
// GET /items
func (h *Handler) BrowseAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.facade.BrowseAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// BrowseMine lists the caller's items.
// GET /items/mine?kind=listed|owned
func (h *Handler) BrowseMine(w http.ResponseWriter, r *http.Request) {
	kind := domain.ListingKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = domain.KindOwned
	}

	items, err := h.facade.BrowseMine(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// MintAndList uploads metadata and lists a new token.
// POST /items
func (h *Handler) MintAndList(w http.ResponseWriter, r *http.Request) {
	var req domain.ListingRequest
	if !decode(w, r, &req) {
		return
	}

	listing, err := h.facade.MintAndList(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

type priceRequest struct {
	Price string `json:"price"`
}

type purchaseRequest struct {
	Price string `json:"price"`
	// TokenURI is the item's locator as returned by GET /items; it is
	// recorded in the journal.
	TokenURI string `json:"tokenURI,omitempty"`
}

// Purchase buys a listed token at the given price.
// POST /items/{tokenId}/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := tokenParam(w, r)
	if !ok {
		return
	}
	var body purchaseRequest
	if !decode(w, r, &body) {
		return
	}

	rcpt, err := h.facade.Purchase(r.Context(), domain.MarketItem{
		TokenID:         tokenID,
		Price:           body.Price,
		MetadataLocator: body.TokenURI,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rcpt)
}

// Resell lists an owned token again.
// POST /items/{tokenId}/resell
func (h *Handler) Resell(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := tokenParam(w, r)
	if !ok {
		return
	}
	var body priceRequest
	if !decode(w, r, &body) {
		return
	}

	rcpt, err := h.facade.Resell(r.Context(), tokenID, body.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rcpt)
}

// ListingFee reports the fee charged for a new listing.
// GET /listing-fee
func (h *Handler) ListingFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.facade.ListingFee(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"fee":      fee,
		"currency": h.facade.Currency(),
	})
}

// History returns the connected account's transaction journal.
// GET /transactions
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	txs, err := h.facade.History(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func tokenParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "tokenId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid token id " + strconv.Quote(raw)})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the failure taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIncompleteListing),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, marketplace.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConnected),
		errors.Is(err, domain.ErrUserDeclined):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUploadFailure),
		errors.Is(err, domain.ErrResolutionFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrTransactionFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("[%s] %s %s: %v", requestIDFrom(r.Context()), r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warningf("encode response: %v", err)
	}
}

type ctxKey struct{}

// requestID tags each request with an id, reusing the caller's when present.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debugf("[%s] %s %s %d %s", requestIDFrom(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
