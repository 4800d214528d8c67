package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"zombie-scanner/internal/logging"
)

// ErrClientClosed is returned by operations on a closed WebSocket client.
var ErrClientClosed = errors.New("websocket client closed")

// ErrUnknownSubscription is returned when unsubscribing an ID the client does not hold.
var ErrUnknownSubscription = errors.New("unknown subscription")

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
	// RequestTimeout bounds the wait for a subscribe/unsubscribe reply.
	RequestTimeout time.Duration
	// BufferSize is the per-subscription channel capacity.
	BufferSize int
	// Commitment is the commitment level requested for notifications.
	Commitment string
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		RequestTimeout:    15 * time.Second,
		BufferSize:        16,
		Commitment:        "confirmed",
	}
}

type subscription struct {
	id       uint64
	serverID int64
	filter   LogsFilter
	ch       chan LogNotification
}

type wsReply struct {
	result json.RawMessage
	err    *RPCError
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig
	log      logging.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64
	localID   atomic.Uint64

	// subs holds active subscriptions by local ID; byServer indexes them by
	// the node-assigned ID of the current connection.
	subs     map[uint64]*subscription
	byServer map[int64]*subscription
	subsMu   sync.RWMutex

	// pending maps request ID to the channel awaiting its reply
	pending   map[uint64]chan wsReply
	pendingMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig, log logging.Logger) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if log == nil {
		log = logging.Nop()
	}

	c := &WSClientImpl{
		endpoint: endpoint,
		config:   cfg,
		log:      log.WithField("component", "ws"),
		subs:     make(map[uint64]*subscription),
		byServer: make(map[int64]*subscription),
		pending:  make(map[uint64]chan wsReply),
		done:     make(chan struct{}),
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

// connect establishes WebSocket connection.
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

// SubscribeLogs subscribes to transaction logs matching the filter.
func (c *WSClientImpl) SubscribeLogs(ctx context.Context, filter LogsFilter) (*Subscription, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	serverID, err := c.subscribe(ctx, filter)
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		id:       c.localID.Add(1),
		serverID: serverID,
		filter:   filter,
		ch:       make(chan LogNotification, c.config.BufferSize),
	}

	c.subsMu.Lock()
	if c.closed.Load() {
		c.subsMu.Unlock()
		return nil, ErrClientClosed
	}
	c.subs[sub.id] = sub
	c.byServer[serverID] = sub
	c.subsMu.Unlock()

	return &Subscription{ID: sub.id, C: sub.ch}, nil
}

// Unsubscribe cancels a subscription and closes its channel. The local state is
// removed even when the node cannot be told.
func (c *WSClientImpl) Unsubscribe(ctx context.Context, id uint64) error {
	c.subsMu.Lock()
	sub, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
		if c.byServer[sub.serverID] == sub {
			delete(c.byServer, sub.serverID)
		}
		close(sub.ch)
	}
	c.subsMu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSubscription, id)
	}
	if c.closed.Load() {
		return nil
	}

	var result bool
	if err := c.request(ctx, "logsUnsubscribe", []interface{}{sub.serverID}, &result); err != nil {
		return fmt.Errorf("logsUnsubscribe: %w", err)
	}
	return nil
}

// subscribe sends logsSubscribe and returns the node-assigned subscription ID.
func (c *WSClientImpl) subscribe(ctx context.Context, filter LogsFilter) (int64, error) {
	var mentionsFilter interface{} = "all"
	if len(filter.Mentions) > 0 {
		mentionsFilter = map[string]interface{}{"mentions": filter.Mentions}
	}

	var serverID int64
	params := []interface{}{
		mentionsFilter,
		map[string]string{"commitment": c.config.Commitment},
	}
	if err := c.request(ctx, "logsSubscribe", params, &serverID); err != nil {
		return 0, fmt.Errorf("logsSubscribe: %w", err)
	}
	return serverID, nil
}

// request writes a JSON-RPC request and waits for the matching reply.
func (c *WSClientImpl) request(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	replyCh := make(chan wsReply, 1)
	c.pendingMu.Lock()
	c.pending[reqID] = replyCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
	}()

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()
	if err != nil {
		return fmt.Errorf("write %s: %w", method, err)
	}

	timer := time.NewTimer(c.config.RequestTimeout)
	defer timer.Stop()

	select {
	case reply, ok := <-replyCh:
		if !ok {
			return ErrClientClosed
		}
		if reply.err != nil {
			return reply.err
		}
		if result != nil {
			if err := json.Unmarshal(reply.result, result); err != nil {
				return fmt.Errorf("unmarshal %s result: %w", method, err)
			}
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%s: no reply after %s", method, c.config.RequestTimeout)
	case <-c.done:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
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
	for id, sub := range c.subs {
		close(sub.ch)
		delete(c.subs, id)
	}
	c.byServer = make(map[int64]*subscription)
	c.subsMu.Unlock()

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

			if !c.reconnecting.Swap(true) {
				c.log.WithError(err).Warnf("connection lost, reconnecting in %s", reconnectDelay)
				go c.reconnect(conn, reconnectDelay)
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

// reconnect replaces a broken connection and resubscribes every active filter.
func (c *WSClientImpl) reconnect(broken *websocket.Conn, delay time.Duration) {
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
	if c.conn == broken {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.log.WithError(err).Warnf("reconnect failed")
		return
	}

	if c.closed.Load() {
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.connMu.Unlock()
		return
	}

	c.resubscribeAll()
}

// resubscribeAll re-registers every active subscription on the current connection.
// Local IDs and channels are kept; only the server mapping changes.
func (c *WSClientImpl) resubscribeAll() {
	c.subsMu.RLock()
	subs := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.subsMu.RUnlock()

	resubscribed := 0
	for _, sub := range subs {
		ctx, cancel := context.WithTimeout(context.Background(), c.config.RequestTimeout)
		serverID, err := c.subscribe(ctx, sub.filter)
		cancel()
		if err != nil {
			c.log.WithError(err).Warnf("resubscribe %d failed", sub.id)
			continue
		}

		c.subsMu.Lock()
		if _, ok := c.subs[sub.id]; ok {
			if c.byServer[sub.serverID] == sub {
				delete(c.byServer, sub.serverID)
			}
			sub.serverID = serverID
			c.byServer[serverID] = sub
			resubscribed++
		}
		c.subsMu.Unlock()
	}

	c.log.Infof("reconnected, %d/%d subscriptions restored", resubscribed, len(subs))
}

// handleMessage processes incoming WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.log.WithError(err).Debugf("discarding malformed message")
		return
	}

	if env.Method == "logsNotification" {
		var params wsNotificationParams
		if err := json.Unmarshal(env.Params, &params); err != nil {
			c.log.WithError(err).Debugf("discarding malformed notification")
			return
		}
		c.handleLogsNotification(&params)
		return
	}

	if env.ID == nil {
		return
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[*env.ID]
	if ok {
		delete(c.pending, *env.ID)
	}
	c.pendingMu.Unlock()

	if !ok {
		if env.Error != nil {
			c.log.Warnf("error response for unknown request %d: %s", *env.ID, env.Error.Error())
		}
		return
	}

	ch <- wsReply{result: env.Result, err: env.Error}
}

// handleLogsNotification dispatches a log notification to its subscriber.
func (c *WSClientImpl) handleLogsNotification(params *wsNotificationParams) {
	value := params.Result.Value
	logNotif := LogNotification{
		Signature: value.Signature,
		Logs:      value.Logs,
		Err:       value.Err,
	}
	if params.Result.Context != nil {
		logNotif.Slot = params.Result.Context.Slot
	}

	// Sending under the read lock keeps Unsubscribe from closing the channel mid-send.
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	sub, ok := c.byServer[params.Subscription]
	if !ok {
		return
	}

	select {
	case sub.ch <- logNotif:
	default:
		// Subscriber is behind and already holds pending notifications.
	}
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
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.log.WithError(err).Debugf("ping failed")
				}
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

// wsEnvelope covers both replies (id + result/error) and notifications (method + params).
type wsEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext  `json:"context"`
	Value   wsLogsValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsLogsValue struct {
	Signature string      `json:"signature"`
	Logs      []string    `json:"logs"`
	Err       interface{} `json:"err"`
}

var _ WSClient = (*WSClientImpl)(nil)
