// internal/lobby/connections.go

package lobby

import (
	"sync"

	"github.com/google/uuid"
)

// ConnectionRegistry tracks live connections and which identity each one belongs to.
// An identity may own several connections; a connection owns at most one identity.
type ConnectionRegistry struct {
	mu         sync.Mutex
	conns      map[uuid.UUID]*Connection
	owner      map[uuid.UUID]string                 // connection id -> username
	byIdentity map[string]map[uuid.UUID]*Connection // username -> connection set
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns:      make(map[uuid.UUID]*Connection),
		owner:      make(map[uuid.UUID]string),
		byIdentity: make(map[string]map[uuid.UUID]*Connection),
	}
}

// Add registers a connection that has not logged in yet.
func (cr *ConnectionRegistry) Add(conn *Connection) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.conns[conn.ID] = conn
}

// Bind attaches a connection to username, detaching it from any previous identity.
func (cr *ConnectionRegistry) Bind(connID uuid.UUID, username string) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	conn, ok := cr.conns[connID]
	if !ok {
		return false
	}
	cr.unbindUnsafe(connID)
	set, ok := cr.byIdentity[username]
	if !ok {
		set = make(map[uuid.UUID]*Connection)
		cr.byIdentity[username] = set
	}
	set[connID] = conn
	cr.owner[connID] = username
	return true
}

// unbindUnsafe detaches a connection from its identity, if any.
// Assumes lock is held.
func (cr *ConnectionRegistry) unbindUnsafe(connID uuid.UUID) {
	prev, ok := cr.owner[connID]
	if !ok {
		return
	}
	delete(cr.owner, connID)
	if set, ok := cr.byIdentity[prev]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(cr.byIdentity, prev)
		}
	}
}

// Owner returns the identity a connection is bound to.
func (cr *ConnectionRegistry) Owner(connID uuid.UUID) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	u, ok := cr.owner[connID]
	return u, ok
}

// ConnectionsOf returns every live connection of username.
func (cr *ConnectionRegistry) ConnectionsOf(username string) []*Connection {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	set := cr.byIdentity[username]
	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// DropIdentity removes the whole connection set of username. The connections stay
// registered but no longer belong to anyone.
func (cr *ConnectionRegistry) DropIdentity(username string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	for id := range cr.byIdentity[username] {
		delete(cr.owner, id)
	}
	delete(cr.byIdentity, username)
}

// Remove forgets a dead connection and reports the identity it belonged to.
func (cr *ConnectionRegistry) Remove(connID uuid.UUID) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	owner, bound := cr.owner[connID]
	cr.unbindUnsafe(connID)
	delete(cr.conns, connID)
	return owner, bound
}

// Count returns the number of registered connections.
func (cr *ConnectionRegistry) Count() int {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return len(cr.conns)
}
