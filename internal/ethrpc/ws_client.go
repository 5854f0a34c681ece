package ethrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("ethrpc")

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SubscribeTimeout bounds the wait for a subscription id.
	SubscribeTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		SubscribeTimeout:  30 * time.Second,
	}
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription id to channel
	subs   map[string]chan Head
	subsMu sync.RWMutex

	// pendingSubs maps request id to channel waiting for subscription id
	pendingSubs   map[uint64]chan string
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

var _ WSClient = (*WSClientImpl)(nil)

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.SubscribeTimeout <= 0 {
		cfg.SubscribeTimeout = DefaultWSConfig().SubscribeTimeout
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		subs:        make(map[string]chan Head),
		pendingSubs: make(map[uint64]chan string),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeNewHeads subscribes to new chain heads. The returned channel is
// closed when the client is closed.
func (c *WSClientImpl) SubscribeNewHeads(ctx context.Context) (<-chan Head, error) {
	subID, err := c.subscribe(ctx)
	if err != nil {
		return nil, err
	}

	// Slow consumers drop heads; a head is only a wake-up hint.
	ch := make(chan Head, 64)
	c.subsMu.Lock()
	c.subs[subID] = ch
	c.subsMu.Unlock()

	return ch, nil
}

func (c *WSClientImpl) subscribe(ctx context.Context) (string, error) {
	if c.closed.Load() {
		return "", fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "eth_subscribe",
		Params:  []interface{}{"newHeads"},
	}

	confirmCh := make(chan string, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = confirmCh
	c.pendingSubsMu.Unlock()

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		c.dropPending(reqID)
		return "", fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		c.dropPending(reqID)
		return "", fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case subID, ok := <-confirmCh:
		if !ok {
			return "", fmt.Errorf("subscription rejected")
		}
		return subID, nil
	case <-time.After(c.config.SubscribeTimeout):
		c.dropPending(reqID)
		return "", fmt.Errorf("subscription timeout after %s", c.config.SubscribeTimeout)
	case <-c.done:
		return "", fmt.Errorf("client closed")
	case <-ctx.Done():
		c.dropPending(reqID)
		return "", ctx.Err()
	}
}

func (c *WSClientImpl) dropPending(reqID uint64) {
	c.pendingSubsMu.Lock()
	delete(c.pendingSubs, reqID)
	c.pendingSubsMu.Unlock()
}

// Close closes the WebSocket connection.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, ch := range c.pendingSubs {
		close(ch)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	return nil
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			log.Warningf("websocket read failed, reconnecting in %s: %v", reconnectDelay, err)
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect re-dials and resubscribes every active subscription.
func (c *WSClientImpl) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		log.Errorf("websocket reconnect: %v", err)
		return
	}

	c.resubscribeAll()
}

func (c *WSClientImpl) resubscribeAll() {
	c.subsMu.RLock()
	channels := make(map[string]chan Head, len(c.subs))
	for id, ch := range c.subs {
		channels[id] = ch
	}
	c.subsMu.RUnlock()

	for oldID, ch := range channels {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		newID, err := c.subscribe(ctx)
		cancel()

		if err != nil {
			log.Warningf("resubscribe newHeads: %v", err)
			continue
		}

		c.subsMu.Lock()
		delete(c.subs, oldID)
		c.subs[newID] = ch
		c.subsMu.Unlock()
	}
}

func (c *WSClientImpl) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debugf("undecodable websocket message: %v", err)
		return
	}

	switch {
	case msg.Error != nil:
		log.Errorf("websocket error response id=%d: %v", msg.ID, msg.Error)
		c.pendingSubsMu.Lock()
		ch, ok := c.pendingSubs[msg.ID]
		if ok {
			delete(c.pendingSubs, msg.ID)
			close(ch)
		}
		c.pendingSubsMu.Unlock()
	case msg.Method == "eth_subscription" && msg.Params != nil:
		c.handleHead(msg.Params)
	case msg.ID != 0 && len(msg.Result) > 0:
		var subID string
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			return
		}
		c.pendingSubsMu.Lock()
		ch, ok := c.pendingSubs[msg.ID]
		if ok {
			delete(c.pendingSubs, msg.ID)
		}
		c.pendingSubsMu.Unlock()
		if ok {
			ch <- subID
		}
	}
}

func (c *WSClientImpl) handleHead(params *wsNotificationParams) {
	var raw wsHead
	if err := json.Unmarshal(params.Result, &raw); err != nil {
		log.Debugf("undecodable head: %v", err)
		return
	}
	head := Head{Hash: raw.Hash}
	if raw.Number != nil {
		head.Number = raw.Number.ToInt()
	}

	c.subsMu.RLock()
	ch, ok := c.subs[params.Subscription]
	if ok {
		select {
		case ch <- head:
		default:
		}
	}
	c.subsMu.RUnlock()
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// a dead connection surfaces in readLoop
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsMessage struct {
	JSONRPC string                `json:"jsonrpc"`
	ID      uint64                `json:"id"`
	Result  json.RawMessage       `json:"result,omitempty"`
	Error   *Error                `json:"error,omitempty"`
	Method  string                `json:"method,omitempty"`
	Params  *wsNotificationParams `json:"params,omitempty"`
}

type wsNotificationParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

type wsHead struct {
	Number *hexutil.Big `json:"number"`
	Hash   common.Hash  `json:"hash"`
}
