package websocket

import (
	"sync"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connection is one live streaming session. The write mutex serializes frames
// to a single peer, so per-client delivery order matches issuance order.
type Connection struct {
	ClientID string
	UserID   string
	channel  Channel
	writeMu  sync.Mutex
}

// Stats is a point-in-time snapshot of the registry.
type Stats struct {
	TotalConnections   int            `json:"total_connections"`
	TotalUsers         int            `json:"total_users"`
	ConnectionsPerUser map[string]int `json:"connections_per_user"`
}

// Registry tracks active streaming sessions, keyed by generated client id and
// indexed by the caller-supplied user id. It is constructed once and injected
// wherever delivery is needed; there is no package-level instance.
//
// Both maps mutate only under mu, so they can never disagree about which
// clients exist.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	sessions map[string]map[string]struct{}

	// instanceID lets the Redis fanout skip messages this instance published.
	instanceID string
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewRegistry(rdb *redis.Client, log logger.ILogger) *Registry {
	return &Registry{
		conns:      make(map[string]*Connection),
		sessions:   make(map[string]map[string]struct{}),
		instanceID: uuid.NewString(),
		rdb:        rdb,
		logger:     log,
	}
}

// Register stores the channel under a fresh client id and adds it to the
// user's session set. It never fails for a live channel.
func (r *Registry) Register(ch Channel, userID string) string {
	clientID := uuid.NewString()

	conn := &Connection{
		ClientID: clientID,
		UserID:   userID,
		channel:  ch,
	}

	r.mu.Lock()
	r.conns[clientID] = conn
	set, ok := r.sessions[userID]
	if !ok {
		set = make(map[string]struct{})
		r.sessions[userID] = set
	}
	set[clientID] = struct{}{}
	r.mu.Unlock()

	r.logger.Info("Registry", "Client registered", map[string]interface{}{
		"client_id": clientID,
		"user_id":   userID,
	})
	return clientID
}

// Unregister removes the connection and prunes the user's session set.
// Unknown client ids are a no-op.
func (r *Registry) Unregister(clientID, userID string) {
	r.mu.Lock()
	_, existed := r.conns[clientID]
	delete(r.conns, clientID)
	if set, ok := r.sessions[userID]; ok {
		delete(set, clientID)
		if len(set) == 0 {
			delete(r.sessions, userID)
		}
	}
	r.mu.Unlock()

	if existed {
		r.logger.Info("Registry", "Client unregistered", map[string]interface{}{
			"client_id": clientID,
			"user_id":   userID,
		})
	}
}

// Send delivers one envelope to a single client. A write failure is treated
// as an implicit disconnect: the entry is removed and nothing is raised to
// the caller. Unknown client ids are a no-op.
func (r *Registry) Send(clientID string, env dto.Envelope) {
	r.mu.RLock()
	conn, ok := r.conns[clientID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	conn.writeMu.Lock()
	err := conn.channel.Send(env)
	conn.writeMu.Unlock()

	if err != nil {
		r.logger.Warn("Registry", "Write failed, dropping connection", map[string]interface{}{
			"client_id": clientID,
			"user_id":   conn.UserID,
			"error":     err.Error(),
		})
		r.Unregister(clientID, conn.UserID)
		_ = conn.channel.Close()
	}
}

// Broadcast delivers one envelope to every client registered for the user at
// call time. The session set is snapshotted first, so registrations racing
// the broadcast neither panic nor skip members that existed at the snapshot;
// each member is attempted exactly once and failures stay independent.
func (r *Registry) Broadcast(userID string, env dto.Envelope) {
	for _, clientID := range r.snapshot(userID) {
		r.Send(clientID, env)
	}
}

func (r *Registry) snapshot(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for clientID := range set {
		ids = append(ids, clientID)
	}
	return ids
}

// Stats returns a read-only snapshot of connection counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perUser := make(map[string]int, len(r.sessions))
	for userID, set := range r.sessions {
		perUser[userID] = len(set)
	}

	return Stats{
		TotalConnections:   len(r.conns),
		TotalUsers:         len(r.sessions),
		ConnectionsPerUser: perUser,
	}
}
