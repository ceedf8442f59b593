package game

// GameEventType names an outbound broadcast.
type GameEventType string

const (
	EventUpdateRoomPlayers GameEventType = "updateRoomPlayers"
	EventUpdateGameState   GameEventType = "updateGameState"
	EventUpdateHandCards   GameEventType = "updateHandCards"
	EventGameFinished      GameEventType = "gameFinished"
)

// GameEvent is a broadcast pushed to clients without a matching request.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	RoomID  int                    `json:"roomId"`
	Players *[SlotCount]*SlotView  `json:"players,omitempty"`
	State   *GameStateView         `json:"state,omitempty"`
	Hand    *HandView              `json:"hand,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Delivery is one event addressed to a set of usernames.
type Delivery struct {
	Recipients []string
	Event      GameEvent
}

// Sender delivers one event to every connection of username. It runs with the room
// lock held and must not block or touch the room.
type Sender func(username string, ev GameEvent)

// Outbox collects the events produced by one committed room operation.
// The room flushes it through its Sender before releasing the lock.
type Outbox struct {
	deliveries []Delivery
}

func (o *Outbox) Deliveries() []Delivery {
	if o == nil {
		return nil
	}
	return o.deliveries
}

// Flush hands every queued event to send, one call per recipient.
func (o *Outbox) Flush(send Sender) {
	for _, d := range o.Deliveries() {
		for _, u := range d.Recipients {
			send(u, d.Event)
		}
	}
}

func (o *Outbox) add(recipients []string, ev GameEvent) {
	if len(recipients) == 0 {
		return
	}
	o.deliveries = append(o.deliveries, Delivery{Recipients: recipients, Event: ev})
}

// occupantNamesUnsafe lists the usernames of everyone seated.
// Assumes lock is held.
func (r *Room) occupantNamesUnsafe() []string {
	var names []string
	for _, p := range r.Slots {
		if p != nil {
			names = append(names, p.Username)
		}
	}
	return names
}

// queueRosterUnsafe queues the slot list for the whole room.
// Assumes lock is held.
func (r *Room) queueRosterUnsafe(out *Outbox) {
	roster := r.rosterUnsafe()
	out.add(r.occupantNamesUnsafe(), GameEvent{
		Type:    EventUpdateRoomPlayers,
		RoomID:  r.ID,
		Players: &roster,
	})
}

// queueGameStateUnsafe queues the public game state for the whole room.
// Assumes lock is held.
func (r *Room) queueGameStateUnsafe(out *Outbox) {
	view := r.gameViewUnsafe()
	out.add(r.occupantNamesUnsafe(), GameEvent{
		Type:   EventUpdateGameState,
		RoomID: r.ID,
		State:  &view,
	})
}

// queueHandUnsafe queues slot i's hand to its occupant only.
// Assumes lock is held.
func (r *Room) queueHandUnsafe(out *Outbox, i int) {
	p := r.Slots[i]
	if p == nil {
		return
	}
	view := handViewUnsafe(p)
	out.add([]string{p.Username}, GameEvent{
		Type:   EventUpdateHandCards,
		RoomID: r.ID,
		Hand:   &view,
	})
}
