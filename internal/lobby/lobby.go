// internal/lobby/lobby.go
package lobby

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Connection is one live client socket. A single identity may hold several.
type Connection struct {
	ID      uuid.UUID
	Remote  string
	OutChan chan interface{}

	closeOnce sync.Once
	done      chan struct{}
}

// NewConnection creates a connection with an outbox of the given capacity.
func NewConnection(remote string, buffer int) *Connection {
	return &Connection{
		ID:      uuid.New(),
		Remote:  remote,
		OutChan: make(chan interface{}, buffer),
		done:    make(chan struct{}),
	}
}

// Write pushes a message onto the outbox without blocking. Messages are dropped when the
// outbox is full or the connection is closed.
func (conn *Connection) Write(msg interface{}) {
	select {
	case <-conn.done:
		return
	default:
	}
	select {
	case conn.OutChan <- msg:
	default:
		log.Warnf("Connection %s: outbox full, dropped %T", conn.ID, msg)
	}
}

// Done is closed once the connection has been closed.
func (conn *Connection) Done() <-chan struct{} {
	return conn.done
}

// Close marks the connection as finished. The outbox is left open so late writers never panic.
func (conn *Connection) Close() {
	conn.closeOnce.Do(func() {
		close(conn.done)
	})
}
