package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/metrics"
	"github.com/victorivanov/parley/internal/snowflake"
)

const replayBufferSize = 100

// Manager owns every identified WebSocket connection and routes workspace
// events to the users subscribed to them.
type Manager struct {
	mu            sync.RWMutex
	connections   map[int64]*Connection    // userID → connection
	subscriptions map[int64]map[int64]bool // workspaceID → set of userIDs

	// replayMu serializes dispatches so sequence numbers reach clients in order.
	replayMu     sync.Mutex
	sequence     int64
	replayBuffer map[int64]*ringBuffer // workspaceID → recent events

	tokens     *auth.TokenService
	workspaces database.WorkspaceRepository
}

func NewManager(tokens *auth.TokenService, workspaces database.WorkspaceRepository) *Manager {
	return &Manager{
		connections:   make(map[int64]*Connection),
		subscriptions: make(map[int64]map[int64]bool),
		replayBuffer:  make(map[int64]*ringBuffer),
		tokens:        tokens,
		workspaces:    workspaces,
	}
}

// register adds a connection, displacing any older connection of the same user.
func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.connections[c.UserID]; ok && old != c {
		old.SendPayload(GatewayPayload{Op: OpReconnect})
		old.Close()
	}
	m.connections[c.UserID] = c
	metrics.GatewayConnections.Set(float64(len(m.connections)))
}

// unregister removes a connection and its subscriptions. A connection that
// was already displaced leaves its successor untouched.
func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.connections[c.UserID]
	if !ok || existing != c {
		return
	}
	delete(m.connections, c.UserID)
	for workspaceID, users := range m.subscriptions {
		delete(users, c.UserID)
		if len(users) == 0 {
			delete(m.subscriptions, workspaceID)
		}
	}
	metrics.GatewayConnections.Set(float64(len(m.connections)))
}

func (m *Manager) SubscribeToWorkspace(userID, workspaceID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscriptions[workspaceID] == nil {
		m.subscriptions[workspaceID] = make(map[int64]bool)
	}
	m.subscriptions[workspaceID][userID] = true
}

func (m *Manager) UnsubscribeFromWorkspace(userID, workspaceID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if users, ok := m.subscriptions[workspaceID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(m.subscriptions, workspaceID)
		}
	}
}

func (m *Manager) DropWorkspace(workspaceID int64) {
	m.mu.Lock()
	delete(m.subscriptions, workspaceID)
	m.mu.Unlock()

	m.replayMu.Lock()
	delete(m.replayBuffer, workspaceID)
	m.replayMu.Unlock()
}

// DispatchToUser sends an unsequenced event to one user, if connected.
func (m *Manager) DispatchToUser(userID int64, event string, data any) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()

	if ok {
		c.SendEvent(event, data, 0)
	}
}

// DispatchToWorkspace sequences an event, records it for resume and sends it
// to every subscriber of the workspace.
func (m *Manager) DispatchToWorkspace(workspaceID int64, event string, data any) {
	m.replayMu.Lock()
	defer m.replayMu.Unlock()

	m.sequence++
	seq := m.sequence
	rb, ok := m.replayBuffer[workspaceID]
	if !ok {
		rb = newRingBuffer(replayBufferSize)
		m.replayBuffer[workspaceID] = rb
	}
	rb.add(sequencedEvent{Sequence: seq, Event: Event{Name: event, Data: data}})

	for _, c := range m.subscribers(workspaceID) {
		c.SendEvent(event, data, seq)
	}
	metrics.GatewayEvents.WithLabelValues(event).Inc()
}

func (m *Manager) subscribers(workspaceID int64) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := m.subscriptions[workspaceID]
	conns := make([]*Connection, 0, len(users))
	for userID := range users {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	return conns
}

func (m *Manager) currentSequence() int64 {
	m.replayMu.Lock()
	defer m.replayMu.Unlock()
	return m.sequence
}

// authenticate validates the token and subscribes the connection to every
// workspace its user belongs to.
func (m *Manager) authenticate(c *Connection, token string) ([]int64, bool) {
	claims, err := m.tokens.ValidateAccessToken(token)
	if err != nil {
		slog.Warn("gateway: invalid token", "error", err)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	workspaces, err := m.workspaces.GetByUserID(ctx, claims.UserID)
	if err != nil {
		slog.Error("gateway: loading workspaces", "userID", claims.UserID, "error", err)
		return nil, false
	}

	c.UserID = claims.UserID
	c.identified.Store(true)
	m.register(c)

	ids := make([]int64, len(workspaces))
	for i, ws := range workspaces {
		ids[i] = ws.ID
		m.SubscribeToWorkspace(c.UserID, ws.ID)
	}
	return ids, true
}

func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		slog.Warn("gateway: invalid identify data", "error", err)
		c.Close()
		return
	}

	ids, ok := m.authenticate(c, identify.Token)
	if !ok {
		c.Close()
		return
	}
	c.SessionID = uuid.NewString()

	c.SendEvent(EventReady, ReadyData{
		SessionID:  c.SessionID,
		UserID:     snowflake.ID(c.UserID),
		Workspaces: snowflake.IDs(ids),
	}, m.currentSequence())
}

// handleResume replays buffered events newer than the client's last sequence.
// If any of them were already evicted the client must identify again.
func (m *Manager) handleResume(c *Connection, data json.RawMessage) {
	var resume ResumeData
	if err := json.Unmarshal(data, &resume); err != nil {
		slog.Warn("gateway: invalid resume data", "error", err)
		c.SendPayload(GatewayPayload{Op: OpInvalidSession})
		return
	}

	ids, ok := m.authenticate(c, resume.Token)
	if !ok {
		c.Close()
		return
	}
	c.SessionID = resume.SessionID

	m.replayMu.Lock()
	var missed []sequencedEvent
	complete := true
	for _, id := range ids {
		rb, ok := m.replayBuffer[id]
		if !ok {
			continue
		}
		events, whole := rb.since(resume.Sequence)
		missed = append(missed, events...)
		complete = complete && whole
	}
	current := m.sequence
	m.replayMu.Unlock()

	if !complete {
		c.SendPayload(GatewayPayload{Op: OpInvalidSession})
		return
	}

	sortBySequence(missed)
	for _, ev := range missed {
		c.SendEvent(ev.Name, ev.Data, ev.Sequence)
	}
	c.SendEvent(EventResumed, struct{}{}, current)
}

type sequencedEvent struct {
	Sequence int64
	Event
}

// ringBuffer is a fixed-size circular buffer of recent events.
type ringBuffer struct {
	events []sequencedEvent
	size   int
	pos    int
	full   bool
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{events: make([]sequencedEvent, size), size: size}
}

func (rb *ringBuffer) add(ev sequencedEvent) {
	rb.events[rb.pos] = ev
	rb.pos = (rb.pos + 1) % rb.size
	if rb.pos == 0 {
		rb.full = true
	}
}

// since returns the events with a sequence above afterSeq, oldest first. The
// boolean is false when older events were overwritten and some of them may
// have been newer than afterSeq.
func (rb *ringBuffer) since(afterSeq int64) ([]sequencedEvent, bool) {
	count, start := rb.pos, 0
	if rb.full {
		count, start = rb.size, rb.pos
	}

	var result []sequencedEvent
	for i := 0; i < count; i++ {
		ev := rb.events[(start+i)%rb.size]
		if ev.Sequence > afterSeq {
			result = append(result, ev)
		}
	}
	complete := !rb.full || rb.events[start].Sequence <= afterSeq+1
	return result, complete
}
