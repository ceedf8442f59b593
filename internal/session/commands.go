package session

import (
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/models"
)

var errNotLoggedIn = &game.Error{Kind: game.KindInvalidState, Message: "log in on this connection first"}

func (o *Orchestrator) login(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, created, err := o.Directory.Login(cmd.Username)
	if err != nil {
		return nil, &game.Error{Kind: game.KindInvalidMove, Message: err.Error()}
	}
	if !o.Conns.Bind(conn.ID, p.Username) {
		return nil, &game.Error{Kind: game.KindNotFound, Message: "connection is closed"}
	}
	o.logger.WithField("user", p.Username).Infof("login (new identity: %v)", created)

	data := map[string]interface{}{
		"username":    p.Username,
		"displayName": p.DisplayName(),
		"roomId":      p.RoomID(),
	}
	// a returning player gets their table back on the new connection
	if roomID := p.RoomID(); roomID != 0 {
		if room, ok := o.Rooms.GetRoom(roomID); ok {
			if err := room.Resync(p.Username, func(ev game.GameEvent) { conn.Write(ev) }); err != nil {
				o.logger.WithField("user", p.Username).Debugf("resync skipped: %v", err)
			}
		}
	}
	return data, nil
}

func (o *Orchestrator) logout(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, err := o.actor(conn, cmd)
	if err != nil {
		return nil, err
	}
	if p.RoomID() != 0 {
		room, err := o.seatedRoom(p, cmd.RoomID)
		if err != nil {
			return nil, err
		}
		if _, _, err = room.Leave(p.Username); err != nil {
			return nil, err
		}
	} else if cmd.RoomID != 0 {
		return nil, game.ErrNotSeated
	}
	o.Conns.DropIdentity(p.Username)
	return map[string]interface{}{"username": p.Username}, nil
}

func (o *Orchestrator) joinRoom(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, err := o.actor(conn, cmd)
	if err != nil {
		return nil, err
	}
	room, ok := o.Rooms.GetRoom(cmd.RoomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	slot, _, err := room.Join(p)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"roomId": room.ID, "slotIndex": slot}, nil
}

func (o *Orchestrator) toggleReady(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, err := o.actor(conn, cmd)
	if err != nil {
		return nil, err
	}
	room, err := o.seatedRoom(p, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	ready, _, err := room.ToggleReady(p.Username)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ready": ready, "roomId": room.ID}, nil
}

func (o *Orchestrator) playCard(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, err := o.actor(conn, cmd)
	if err != nil {
		return nil, err
	}
	room, err := o.seatedRoom(p, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	res, _, err := room.PlayCard(p.Username, cmd.CardID, cmd.ChosenColor)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) drawCard(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, err := o.actor(conn, cmd)
	if err != nil {
		return nil, err
	}
	room, err := o.seatedRoom(p, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	res, _, err := room.DrawCard(p.Username)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) skipTurn(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	p, err := o.actor(conn, cmd)
	if err != nil {
		return nil, err
	}
	room, err := o.seatedRoom(p, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	if _, err := room.SkipTurn(p.Username); err != nil {
		return nil, err
	}
	return nil, nil
}

func (o *Orchestrator) ping(conn *lobby.Connection, cmd models.Command) (interface{}, error) {
	return nil, nil
}
