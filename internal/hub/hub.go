package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	"github.com/zaidrahmann/sportz-websockets/internal/metrics"
)

const (
	// DefaultHeartbeatInterval is the liveness sweep period. A silent
	// connection survives at most two intervals.
	DefaultHeartbeatInterval = 30 * time.Second

	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
	cmdBufferSize  = 256
)

// client is the hub-side state for one live connection. The alive flag
// is atomic because the pong handler runs on the connection's reader
// goroutine while the sweep reads it on the hub goroutine.
type client struct {
	writer  *clientWriter
	alive   atomic.Bool
	matches map[string]struct{}
}

type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type inboundCmd struct {
	baseHubCmd
	connection *websocket.Conn
	data       []byte
}

type broadcastCmd struct {
	baseHubCmd
	global    bool
	matchKey  string
	eventType domain.EventType
	data      []byte
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type subscriberCountCmd struct {
	baseHubCmd
	matchKey     string
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub owns the set of live connections and the match subscription index.
// All state is confined to the run goroutine; the exported methods only
// post commands.
type Hub struct {
	cmdCh             chan hubCmd
	clock             clockwork.Clock
	clients           map[*websocket.Conn]*client
	subscriptions     map[string]map[*websocket.Conn]*client
	heartbeatInterval time.Duration
	maxClients        int
	done              chan struct{}
}

// New creates a hub and starts its goroutine. maxClients caps the number
// of registered connections; zero or negative means unlimited.
func New(clock clockwork.Clock, heartbeatInterval time.Duration, maxClients int) *Hub {
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	h := &Hub{
		cmdCh:             make(chan hubCmd, cmdBufferSize),
		clock:             clock,
		clients:           make(map[*websocket.Conn]*client),
		subscriptions:     make(map[string]map[*websocket.Conn]*client),
		heartbeatInterval: heartbeatInterval,
		maxClients:        maxClients,
		done:              make(chan struct{}),
	}
	go h.run()
	return h
}

// Register adds a connection to the registry and sends the welcome
// message. Returns an error if the hub is at capacity.
func (h *Hub) Register(connection *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: connection, errorChannel: errCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection and cleans up all its subscriptions.
// Safe to call for connections the hub never saw or already evicted.
func (h *Hub) Unregister(connection *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: connection}
}

// HandleMessage feeds one inbound client frame into the hub. Frames are
// processed in posting order, so per-connection arrival order is kept as
// long as the caller reads sequentially.
func (h *Hub) HandleMessage(connection *websocket.Conn, data []byte) {
	h.cmdCh <- inboundCmd{connection: connection, data: data}
}

// BroadcastGlobal delivers an event to every live connection.
// Fire-and-forget: marshal failures are logged, slow peers are evicted,
// nothing propagates to the caller.
func (h *Hub) BroadcastGlobal(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal broadcast event", "type", event.Type, "error", err)
		return
	}
	h.cmdCh <- broadcastCmd{global: true, eventType: event.Type, data: data}
}

// BroadcastToMatch delivers an event to the subscribers of one match.
// A match without subscribers is a silent no-op.
func (h *Hub) BroadcastToMatch(matchID string, event domain.Event) {
	key := strings.TrimSpace(matchID)
	if key == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal broadcast event", "type", event.Type, "error", err)
		return
	}
	h.cmdCh <- broadcastCmd{matchKey: key, eventType: event.Type, data: data}
}

// ClientCount returns the number of live connections, or -1 on timeout.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}
	return h.awaitCount(replyCh)
}

// SubscriberCount returns the number of subscribers for a match key, or
// -1 on timeout.
func (h *Hub) SubscriberCount(matchID string) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- subscriberCountCmd{matchKey: strings.TrimSpace(matchID), replyChannel: replyCh}
	return h.awaitCount(replyCh)
}

func (h *Hub) awaitCount(replyCh chan int) int {
	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case n := <-replyCh:
		return n
	case <-timer.Chan():
		slog.Warn("Hub count query timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop closes every connection and shuts the hub goroutine down. Blocks
// until the goroutine exits or the stop timeout elapses.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Hub stop timeout exceeded", "timeout", stopTimeout)
		metrics.HubStopTimeoutsTotal.Inc()
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hub panic recovered", "panic", r)
			metrics.HubPanicsTotal.Inc()
			h.closeAllClients(websocket.CloseInternalServerErr, "internal error")
			close(h.done)
		}
	}()

	ticker := h.clock.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				h.handleRegister(c)
			case unregisterCmd:
				h.handleUnregister(c.connection)
			case inboundCmd:
				h.handleInbound(c)
			case broadcastCmd:
				h.handleBroadcast(c)
			case clientCountCmd:
				c.replyChannel <- len(h.clients)
			case subscriberCountCmd:
				c.replyChannel <- len(h.subscriptions[c.matchKey])
			case stopCmd:
				h.handleStop()
				close(h.done)
				return
			default:
				slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		case <-ticker.Chan():
			h.handleSweep()
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting connection: hub at capacity", "max_clients", h.maxClients)
		_ = c.connection.Close()
		c.errorChannel <- fmt.Errorf("max connections (%d) reached", h.maxClients)
		return
	}

	cl := &client{
		writer:  newClientWriter(c.connection, h.clock),
		matches: make(map[string]struct{}),
	}
	cl.alive.Store(true)
	c.connection.SetPongHandler(func(string) error {
		cl.alive.Store(true)
		return nil
	})
	h.clients[c.connection] = cl

	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client registered", "total_clients", len(h.clients))

	h.sendEvent(cl, domain.WelcomeEvent())
	c.errorChannel <- nil
}

func (h *Hub) handleUnregister(connection *websocket.Conn) {
	cl, exists := h.clients[connection]
	if !exists {
		return
	}

	cl.writer.stop()
	delete(h.clients, connection)

	for key := range cl.matches {
		h.dropSubscription(key, connection)
	}

	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	h.updateSubscriptionGauges()
	slog.Debug("Client unregistered", "total_clients", len(h.clients))
}

// handleInbound parses one client frame. Malformed payloads and unknown
// message types are dropped without touching the connection.
func (h *Hub) handleInbound(c inboundCmd) {
	cl, exists := h.clients[c.connection]
	if !exists {
		return
	}

	var msg struct {
		Type    string `json:"type"`
		MatchID any    `json:"matchId"`
	}
	if err := json.Unmarshal(c.data, &msg); err != nil {
		metrics.HubDiscardedMessagesTotal.Inc()
		return
	}

	key := normalizeMatchID(msg.MatchID)

	switch msg.Type {
	case "subscribe":
		if key == "" {
			metrics.HubDiscardedMessagesTotal.Inc()
			return
		}
		h.addSubscription(key, c.connection, cl)
		h.sendEvent(cl, domain.SubscribedEvent(key))
	case "unsubscribe":
		if key == "" {
			metrics.HubDiscardedMessagesTotal.Inc()
			return
		}
		h.removeSubscription(key, c.connection, cl)
		h.sendEvent(cl, domain.UnsubscribedEvent(key))
	default:
		metrics.HubDiscardedMessagesTotal.Inc()
	}
}

func (h *Hub) addSubscription(key string, connection *websocket.Conn, cl *client) {
	set, exists := h.subscriptions[key]
	if !exists {
		set = make(map[*websocket.Conn]*client)
		h.subscriptions[key] = set
	}
	set[connection] = cl
	cl.matches[key] = struct{}{}
	h.updateSubscriptionGauges()
	slog.Debug("Client subscribed", "match_id", key, "subscribers", len(set))
}

// removeSubscription is idempotent: a connection that never subscribed,
// or a key that does not exist, is a no-op.
func (h *Hub) removeSubscription(key string, connection *websocket.Conn, cl *client) {
	delete(cl.matches, key)
	h.dropSubscription(key, connection)
	h.updateSubscriptionGauges()
}

// dropSubscription removes a connection from one match set and deletes
// the key when the set becomes empty, so stale keys never accumulate.
func (h *Hub) dropSubscription(key string, connection *websocket.Conn) {
	set, exists := h.subscriptions[key]
	if !exists {
		return
	}
	delete(set, connection)
	if len(set) == 0 {
		delete(h.subscriptions, key)
	}
}

func (h *Hub) handleBroadcast(c broadcastCmd) {
	var targets map[*websocket.Conn]*client
	if c.global {
		targets = h.clients
	} else {
		targets = h.subscriptions[c.matchKey]
		if len(targets) == 0 {
			return
		}
	}

	metrics.HubBroadcastsTotal.WithLabelValues(string(c.eventType)).Inc()

	var slow []*websocket.Conn
	for connection, cl := range targets {
		if !cl.writer.trySend(c.data) {
			slow = append(slow, connection)
		}
	}

	for _, connection := range slow {
		slog.Warn("Disconnecting slow client", "event_type", c.eventType)
		metrics.HubEvictedConnectionsTotal.WithLabelValues("slow_client").Inc()
		h.handleUnregister(connection)
	}
}

// handleSweep runs the two-tick death detection. A connection whose
// liveness flag is still false from the previous sweep never answered
// its ping and is terminated; everyone else gets the flag cleared and a
// fresh ping.
func (h *Hub) handleSweep() {
	var dead []*websocket.Conn
	for connection, cl := range h.clients {
		if !cl.alive.Load() {
			dead = append(dead, connection)
			continue
		}
		cl.alive.Store(false)
		cl.writer.tryPing()
	}

	for _, connection := range dead {
		slog.Info("Evicting unresponsive client")
		metrics.HubEvictedConnectionsTotal.WithLabelValues("heartbeat").Inc()
		h.handleUnregister(connection)
	}
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "clients", len(h.clients), "subscription_keys", len(h.subscriptions))
	h.closeAllClients(websocket.CloseGoingAway, "server shutting down")
}

func (h *Hub) closeAllClients(code int, reason string) {
	for connection, cl := range h.clients {
		cl.writer.stopGraceful(code, reason)
		delete(h.clients, connection)
	}
	h.subscriptions = make(map[string]map[*websocket.Conn]*client)
	metrics.HubConnectedClients.Set(0)
	h.updateSubscriptionGauges()
}

func (h *Hub) sendEvent(cl *client, event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}
	cl.writer.trySend(data)
}

func (h *Hub) updateSubscriptionGauges() {
	total := 0
	for _, set := range h.subscriptions {
		total += len(set)
	}
	metrics.HubSubscriptionKeys.Set(float64(len(h.subscriptions)))
	metrics.HubSubscriptionEntries.Set(float64(total))
}

// normalizeMatchID coerces a subscription key to its canonical string
// form so "7" and 7 land on the same entry. Any non-empty trimmed string
// is accepted; no positive-integer check is imposed on purpose.
func normalizeMatchID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}
