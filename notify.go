package bankxlive

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type NotificationType string

const (
	NotifyTransaction NotificationType = "transaction"
	NotifyFraudAlert  NotificationType = "fraud_alert"
	NotifyBudgetAlert NotificationType = "budget_alert"
	NotifyVirtualCard NotificationType = "virtual_card"

	maxInboundSize = 4096
	msgTypeAuth    = "auth"
)

type Notification struct {
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

//go:generate mockgen -destination=mocks/mock_notifier.go -package=mocks . Notifier

// Notifier pushes notifications to connected account holders. Delivery is
// best effort: a false or zero result means nobody was reachable.
type Notifier interface {
	Notify(acctID string, n Notification) bool
	Broadcast(n Notification) int
}

var (
	_ Notifier     = (*Hub)(nil)
	_ http.Handler = (*Hub)(nil)
)

type ConnState int32

const (
	StateConnecting ConnState = iota
	StateAuthenticated
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "closed"
	}
}

type HubConfig struct {
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PongWait       time.Duration
	SendBuffer     int
}

// Hub maps account numbers to their one live WebSocket connection. The map is
// only changed by the handshake and close handlers of the connections.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*Conn
	live     map[*Conn]struct{}
	upgrader websocket.Upgrader
	cfg      HubConfig
	log      *zerolog.Logger
	clock    func() time.Time
	closed   bool
}

func NewHub(cfg HubConfig, log *zerolog.Logger) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}
	h := &Hub{
		conns: make(map[string]*Conn),
		live:  make(map[*Conn]struct{}),
		cfg:   cfg,
		log:   log,
		clock: time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(h.cfg.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range h.cfg.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "notification hub is shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Err(err).Str("method", "ws").Msg("error upgrading connection")
		return
	}
	c := &Conn{
		hub:  h,
		ws:   ws,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	closed = h.closed
	if !closed {
		h.live[c] = struct{}{}
	}
	h.mu.Unlock()
	if closed {
		// Close ran during the handshake.
		c.shutdown(websocket.CloseGoingAway, "server shutting down")
	} else {
		h.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connection opened")
	}

	go c.writePump()
	go c.readPump()
}

type inboundMsg struct {
	Type      string `json:"type"`
	AccountID string `json:"accountId"`
}

func (h *Hub) handleInbound(c *Conn, data []byte) {
	var msg inboundMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Warn().Err(err).Msg("ignoring malformed websocket message")
		return
	}
	switch msg.Type {
	case msgTypeAuth:
		if msg.AccountID == "" {
			h.log.Warn().Msg("ignoring auth message without accountId")
			return
		}
		h.register(c, msg.AccountID)
	default:
		h.log.Warn().Str("type", msg.Type).Msg("ignoring unknown websocket message type")
	}
}

// register binds c to acctID. A connection already bound to acctID is
// detached and closed in the same critical section, so a notification can
// never reach both.
func (h *Hub) register(c *Conn, acctID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	prevID, ok := c.authenticate(acctID)
	if !ok {
		return
	}
	if prevID != "" && prevID != acctID && h.conns[prevID] == c {
		delete(h.conns, prevID)
	}
	evicted := h.conns[acctID]
	h.conns[acctID] = c
	if evicted != nil && evicted != c {
		evicted.shutdown(websocket.ClosePolicyViolation, "replaced by newer session")
		h.log.Info().Str("acctID", acctID).Msg("evicted previous websocket session")
	}
	h.log.Info().Str("acctID", acctID).Msg("websocket client authenticated")
}

// detach removes c, and its routing entry only if it still points at c.
func (h *Hub) detach(c *Conn) {
	acctID := c.AcctID()
	h.mu.Lock()
	defer h.mu.Unlock()
	if acctID != "" && h.conns[acctID] == c {
		delete(h.conns, acctID)
	}
	delete(h.live, c)
}

func (h *Hub) encode(n Notification) ([]byte, error) {
	if n.Timestamp.IsZero() {
		n.Timestamp = h.clock().UTC()
	}
	return json.Marshal(n)
}

func (h *Hub) Notify(acctID string, n Notification) bool {
	msg, err := h.encode(n)
	if err != nil {
		h.log.Err(err).Str("acctID", acctID).Msg("error encoding notification")
		return false
	}
	h.mu.RLock()
	c := h.conns[acctID]
	h.mu.RUnlock()
	if c == nil {
		h.log.Debug().Str("acctID", acctID).Str("type", string(n.Type)).Msg("no live connection, notification dropped")
		return false
	}
	if !c.enqueue(msg) {
		h.log.Warn().Str("acctID", acctID).Str("type", string(n.Type)).Msg("connection not ready, notification dropped")
		return false
	}
	return true
}

func (h *Hub) Broadcast(n Notification) int {
	msg, err := h.encode(n)
	if err != nil {
		h.log.Err(err).Msg("error encoding broadcast")
		return 0
	}
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.enqueue(msg) {
			sent++
			continue
		}
		h.log.Warn().Str("acctID", c.AcctID()).Msg("broadcast skipped a connection")
	}
	return sent
}

func (h *Hub) Connected(acctID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[acctID]
	return ok
}

// Len returns the number of open connections, authenticated or not.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.live)
}

// Close shuts every connection down and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Conn, 0, len(h.live))
	for c := range h.live {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*Conn)
	h.mu.Unlock()
	for _, c := range conns {
		c.shutdown(websocket.CloseGoingAway, "server shutting down")
	}
}

// Conn is one WebSocket session. Writes happen only on its writePump
// goroutine; everything else hands messages over through send.
type Conn struct {
	hub  *Hub
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	state     ConnState
	acctID    string
	closeCode int
	closeText string
}

func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) AcctID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acctID
}

func (c *Conn) authenticate(acctID string) (prev string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return "", false
	}
	prev = c.acctID
	c.acctID = acctID
	c.state = StateAuthenticated
	return prev, true
}

// enqueue never blocks. Unauthenticated, closed or backed-up connections
// drop the message.
func (c *Conn) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Conn) shutdown(code int, text string) {
	c.once.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.closeCode, c.closeText = code, text
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Conn) readPump() {
	defer func() {
		c.hub.detach(c)
		c.shutdown(websocket.CloseNormalClosure, "")
	}()
	pongWait := c.hub.cfg.PongWait
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, r, err := c.ws.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.ClosePolicyViolation) {
				c.hub.log.Warn().Err(err).Str("acctID", c.AcctID()).Msg("websocket closed unexpectedly")
			}
			return
		}
		// A failed frame read surfaces again from the next NextReader call.
		data, err := io.ReadAll(io.LimitReader(r, maxInboundSize+1))
		if err != nil {
			continue
		}
		if len(data) > maxInboundSize {
			rest, _ := io.Copy(io.Discard, r)
			c.hub.log.Warn().
				Str("acctID", c.AcctID()).
				Int64("size", int64(len(data))+rest).
				Msg("ignoring oversized websocket message")
			continue
		}
		c.hub.handleInbound(c, data)
	}
}

func (c *Conn) writePump() {
	writeTimeout := c.hub.cfg.WriteTimeout
	ticker := time.NewTicker(c.hub.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Err(err).Str("acctID", c.AcctID()).Msg("error writing notification")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-c.done:
			c.mu.Lock()
			code, text := c.closeCode, c.closeText
			c.mu.Unlock()
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeTimeout))
			return
		}
	}
}
