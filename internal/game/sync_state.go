// internal/game/sync_state.go
package game

import (
	"sort"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// SlotView is the public state of one occupied slot.
type SlotView struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Ready       bool   `json:"ready"`
	HandCount   int    `json:"handCount"`
}

// GameStateView is the public state of a room's game. Cards are copied so the view
// can be marshalled after the room lock is released.
type GameStateView struct {
	GameID           uuid.UUID        `json:"gameId"`
	Status           GameStatus       `json:"status"`
	PendingDrawCount int              `json:"pendingDrawCount"`
	ActiveColor      models.CardColor `json:"activeColor"`
	LastPlayedCard   *models.Card     `json:"lastPlayedCard"`
	TurnIndex        int              `json:"turnIndex"`
	LastActionKind   ActionKind       `json:"lastActionKind"`
	Direction        Direction        `json:"direction"`
	DrawPileSize     int              `json:"drawPileSize"`
	UsedPileSize     int              `json:"usedPileSize"`
}

// HandView is one player's private hand, sorted for display.
type HandView struct {
	Username          string        `json:"username"`
	Cards             []models.Card `json:"cards"`
	AutoPlayCandidate bool          `json:"autoPlayCandidate"`
}

// RoomSnapshot is the full public state of a room.
type RoomSnapshot struct {
	RoomID int                  `json:"roomId"`
	Slots  [SlotCount]*SlotView `json:"slots"`
	Game   GameStateView        `json:"game"`
}

// rosterUnsafe builds the per-slot view. Empty slots are nil.
// Assumes lock is held.
func (r *Room) rosterUnsafe() [SlotCount]*SlotView {
	var out [SlotCount]*SlotView
	for i, p := range r.Slots {
		if p == nil {
			continue
		}
		out[i] = &SlotView{
			Username:    p.Username,
			DisplayName: p.DisplayName(),
			Ready:       p.Ready,
			HandCount:   len(p.Hand),
		}
	}
	return out
}

// gameViewUnsafe builds the public game view.
// Assumes lock is held.
func (r *Room) gameViewUnsafe() GameStateView {
	g := r.Game
	view := GameStateView{
		GameID:           g.ID,
		Status:           g.Status,
		PendingDrawCount: g.PendingDraw,
		ActiveColor:      g.ActiveColor,
		TurnIndex:        g.TurnIndex,
		LastActionKind:   g.LastAction,
		Direction:        g.Direction,
		DrawPileSize:     len(g.DrawPile),
		UsedPileSize:     len(g.UsedPile),
	}
	if g.LastCard != nil {
		c := *g.LastCard
		view.LastPlayedCard = &c
	}
	return view
}

// colorRank orders the four colors first and wild cards last.
func colorRank(c models.CardColor) int {
	if !c.Valid() {
		return len(models.Colors) + 1
	}
	return int(c)
}

// SortHand returns a copy of hand ordered by color, then kind, then number.
func SortHand(hand []*models.Card) []models.Card {
	out := make([]models.Card, len(hand))
	for i, c := range hand {
		out[i] = *c
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ca, cb := colorRank(a.Color), colorRank(b.Color); ca != cb {
			return ca < cb
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Number < b.Number
	})
	return out
}

// handViewUnsafe builds the private hand view for p.
// Assumes lock is held.
func handViewUnsafe(p *models.Player) HandView {
	view := HandView{
		Username: p.Username,
		Cards:    SortHand(p.Hand),
	}
	for _, c := range p.Hand {
		if c.Playable {
			view.AutoPlayCandidate = true
			break
		}
	}
	return view
}

// Snapshot returns the public state of the room.
func (r *Room) Snapshot() RoomSnapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return RoomSnapshot{
		RoomID: r.ID,
		Slots:  r.rosterUnsafe(),
		Game:   r.gameViewUnsafe(),
	}
}

// Resync writes the roster, the game state and username's hand to write while the lock is
// held, so no broadcast committed later can reach the connection first.
func (r *Room) Resync(username string, write func(GameEvent)) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	i := r.seatOfUnsafe(username)
	if i < 0 {
		return ErrNotSeated
	}
	roster := r.rosterUnsafe()
	state := r.gameViewUnsafe()
	hand := handViewUnsafe(r.Slots[i])
	write(GameEvent{Type: EventUpdateRoomPlayers, RoomID: r.ID, Players: &roster})
	write(GameEvent{Type: EventUpdateGameState, RoomID: r.ID, State: &state})
	write(GameEvent{Type: EventUpdateHandCards, RoomID: r.ID, Hand: &hand})
	return nil
}
