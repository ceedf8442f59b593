// internal/game/game.go
package game

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	log "github.com/sirupsen/logrus"
)

// GameStatus is the lifecycle stage of a room's current game.
type GameStatus int

const (
	StatusWaiting GameStatus = iota
	StatusStarting
	StatusPlaying
	StatusFinished
)

func (s GameStatus) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	}
	return "waiting"
}

func (s GameStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Direction is the order in which turns move around the slots.
type Direction int

const (
	Clockwise Direction = iota
	Anticlockwise
)

func (d Direction) String() string {
	if d == Anticlockwise {
		return "anticlockwise"
	}
	return "clockwise"
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Clockwise {
		return Anticlockwise
	}
	return Clockwise
}

func (d Direction) step() int {
	if d == Anticlockwise {
		return -1
	}
	return 1
}

// ActionKind records what the previous turn-ending action was.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionPlay
	ActionDraw
)

func (a ActionKind) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionDraw:
		return "draw"
	}
	return "none"
}

func (a ActionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// GameState holds the piles and turn bookkeeping of one game. It is owned by a Room
// and only touched while the room lock is held.
type GameState struct {
	ID        uuid.UUID
	Status    GameStatus
	DeckCount int

	DrawPile []*models.Card // front is the top
	UsedPile []*models.Card // most recent last

	LastCard    *models.Card
	ActiveColor models.CardColor

	TurnIndex   int
	Direction   Direction
	PendingDraw int
	LastAction  ActionKind

	// DrawnPlayable is the card drawn this turn that is waiting for a play or skip decision.
	DrawnPlayable *models.Card
}

func NewGameState() *GameState {
	return &GameState{
		ID:        uuid.New(),
		Status:    StatusWaiting,
		DeckCount: 1,
		Direction: Clockwise,
	}
}

// Recyclable is the number of used cards that a reshuffle may return to the draw pile.
func (g *GameState) Recyclable() int {
	n := 0
	for _, c := range g.UsedPile {
		if c != g.LastCard {
			n++
		}
	}
	return n
}

// Available is the number of cards that can still be drawn, counting a reshuffle.
func (g *GameState) Available() int {
	return len(g.DrawPile) + g.Recyclable()
}

// recycle moves every used card except the last played one back under the draw pile.
// Assumes lock is held.
func (g *GameState) recycle() {
	keep := make([]*models.Card, 0, 1)
	back := make([]*models.Card, 0, len(g.UsedPile))
	for _, c := range g.UsedPile {
		if c == g.LastCard {
			keep = append(keep, c)
			continue
		}
		back = append(back, c)
	}
	multiPassShuffle(newRand(), back)
	g.DrawPile = append(g.DrawPile, back...)
	g.UsedPile = keep
	log.Debugf("Game %s: recycled %d used card(s), draw pile now %d", g.ID, len(back), len(g.DrawPile))
}

// DrawCards dequeues n cards, reshuffling the used pile first if the draw pile is short.
// Assumes lock is held.
func (g *GameState) DrawCards(n int) ([]*models.Card, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > g.Available() {
		return nil, ErrNoCardsLeft
	}
	if len(g.DrawPile) < n {
		g.recycle()
	}
	drawn := make([]*models.Card, n)
	copy(drawn, g.DrawPile[:n])
	g.DrawPile = g.DrawPile[n:]
	return drawn, nil
}

// Peek returns the top of the draw pile without removing it, reshuffling first when the
// draw pile is empty. It returns nil when no card can be drawn.
// Assumes lock is held.
func (g *GameState) Peek() *models.Card {
	if len(g.DrawPile) == 0 {
		if g.Recyclable() == 0 {
			return nil
		}
		g.recycle()
	}
	return g.DrawPile[0]
}

// Discard puts cards onto the used pile without changing the last played card.
// Assumes lock is held.
func (g *GameState) Discard(cards ...*models.Card) {
	g.UsedPile = append(g.UsedPile, cards...)
}

// PileCount is the number of cards in the draw and used piles.
func (g *GameState) PileCount() int {
	return len(g.DrawPile) + len(g.UsedPile)
}
