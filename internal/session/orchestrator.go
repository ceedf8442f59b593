// internal/session/orchestrator.go
package session

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Result is the reply sent to the connection that issued a command.
type Result struct {
	Type      string      `json:"type"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorKind string      `json:"errorKind,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// handlerFunc runs one command. Room events are sent by the room itself while it is locked.
type handlerFunc func(o *Orchestrator, conn *lobby.Connection, cmd models.Command) (interface{}, error)

type route struct {
	resultType string
	handle     handlerFunc
}

var routes = map[models.CommandType]route{
	models.CmdLogin:       {"loginResult", (*Orchestrator).login},
	models.CmdLogout:      {"logoutResult", (*Orchestrator).logout},
	models.CmdJoinRoom:    {"joinRoomResult", (*Orchestrator).joinRoom},
	models.CmdToggleReady: {"readyChanged", (*Orchestrator).toggleReady},
	models.CmdPlayCard:    {"playCardResult", (*Orchestrator).playCard},
	models.CmdDrawCard:    {"drawCardResult", (*Orchestrator).drawCard},
	models.CmdSkipTurn:    {"skipTurnResult", (*Orchestrator).skipTurn},
	models.CmdPing:        {"pong", (*Orchestrator).ping},
}

// Orchestrator resolves the acting identity and room for each command, runs it, and fans
// the resulting events out to every connection of each recipient.
type Orchestrator struct {
	Rooms     *game.RoomStore
	Directory *lobby.Directory
	Conns     *lobby.ConnectionRegistry

	logger *logrus.Logger
}

func NewOrchestrator(rooms *game.RoomStore, dir *lobby.Directory, logger *logrus.Logger) *Orchestrator {
	o := &Orchestrator{
		Rooms:     rooms,
		Directory: dir,
		Conns:     lobby.NewConnectionRegistry(),
		logger:    logger,
	}
	rooms.SetSender(o.send)
	return o
}

// Attach starts tracking a freshly opened connection.
func (o *Orchestrator) Attach(conn *lobby.Connection) {
	o.Conns.Add(conn)
	o.logger.WithFields(logrus.Fields{"conn": conn.ID, "remote": conn.Remote}).Debug("connection attached")
}

// Handle runs cmd on behalf of conn and returns the reply for conn. A failing command
// leaves every room untouched; a panic is logged and reported as a generic failure.
func (o *Orchestrator) Handle(conn *lobby.Connection, cmd models.Command) (res Result) {
	rt, ok := routes[cmd.Type]
	if !ok {
		return Result{Type: "error", Message: fmt.Sprintf("unknown command %q", cmd.Type)}
	}
	res.Type = rt.resultType

	fields := logrus.Fields{
		"conn":    conn.ID,
		"command": cmd.Type,
		"user":    cmd.Username,
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.WithFields(fields).Errorf("command panicked: %v", r)
			res = Result{Type: rt.resultType, Message: "internal error", ErrorKind: game.KindInternal.String()}
		}
	}()

	data, err := rt.handle(o, conn, cmd)
	if err != nil {
		o.logger.WithFields(fields).WithField("kind", game.KindOf(err)).Debugf("command rejected: %v", err)
		return Result{Type: rt.resultType, Message: err.Error(), ErrorKind: game.KindOf(err).String()}
	}

	res.Success = true
	res.Message = "ok"
	res.Data = data
	return res
}

// Detach forgets a closed connection. If it belonged to a seated player the player is
// logged out of their room.
func (o *Orchestrator) Detach(conn *lobby.Connection) {
	conn.Close()
	username, bound := o.Conns.Remove(conn.ID)
	if !bound {
		return
	}
	p, ok := o.Directory.Get(username)
	if !ok {
		return
	}
	roomID := p.RoomID()
	if roomID == 0 {
		return
	}
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return
	}
	fields := logrus.Fields{"user": username, "room": roomID}
	if _, _, err := room.Leave(p.Username); err != nil {
		if !errors.Is(err, game.ErrNotSeated) {
			o.logger.WithFields(fields).Warnf("disconnect cleanup: %v", err)
			return
		}
		// left between the RoomID read and the room lock
		o.logger.WithFields(fields).Debug("disconnected player already left")
	}
	o.Conns.DropIdentity(p.Username)
	o.logger.WithFields(fields).Info("seated player disconnected, vacated slot")
}

// send writes ev to every live connection of username. Rooms call it with their lock held;
// it only takes the registry lock and Connection.Write never blocks.
func (o *Orchestrator) send(username string, ev game.GameEvent) {
	for _, c := range o.Conns.ConnectionsOf(username) {
		c.Write(ev)
	}
}

// actor resolves the identity a command acts for. The connection must have logged in as it.
func (o *Orchestrator) actor(conn *lobby.Connection, cmd models.Command) (*models.Player, error) {
	name := models.NormalizeUsername(cmd.Username)
	if name == "" {
		owner, ok := o.Conns.Owner(conn.ID)
		if !ok {
			return nil, errNotLoggedIn
		}
		name = owner
	}
	p, ok := o.Directory.Get(name)
	if !ok {
		return nil, game.ErrPlayerNotFound
	}
	if owner, ok := o.Conns.Owner(conn.ID); !ok || owner != p.Username {
		return nil, errNotLoggedIn
	}
	return p, nil
}

// seatedRoom returns the room p is seated in. A non-zero roomID must match it.
func (o *Orchestrator) seatedRoom(p *models.Player, roomID int) (*game.Room, error) {
	current := p.RoomID()
	if current == 0 || (roomID != 0 && roomID != current) {
		return nil, game.ErrNotSeated
	}
	room, ok := o.Rooms.GetRoom(current)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}
