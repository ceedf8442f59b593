// internal/game/room.go
package game

import (
	"sync"

	"github.com/jason-s-yu/uno/internal/models"
	log "github.com/sirupsen/logrus"
)

const (
	// SlotCount is the fixed number of seats in a room.
	SlotCount = 8
	// HandSize is the number of cards dealt to each player at start.
	HandSize = 7
)

// Room is one table. Slots reference players owned by the directory; a room never owns
// player lifetime. Every state change holds Mu for its whole duration.
type Room struct {
	ID int
	Mu sync.Mutex

	Slots [SlotCount]*models.Player
	Game  *GameState

	// DeckCount is the configured deck multiplier; zero sizes the deck by occupant count.
	DeckCount int

	send Sender
}

func NewRoom(id, deckCount int) *Room {
	return &Room{
		ID:        id,
		Game:      NewGameState(),
		DeckCount: deckCount,
	}
}

// SetSender installs the function every committed outbox is flushed through.
func (r *Room) SetSender(send Sender) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.send = send
}

// sendUnsafe flushes out through the room's sender before the lock is released, so
// recipients see events in commit order.
// Assumes lock is held.
func (r *Room) sendUnsafe(out *Outbox) *Outbox {
	if r.send != nil {
		out.Flush(r.send)
	}
	return out
}

// PlayResult describes an accepted play.
type PlayResult struct {
	Card       models.Card `json:"card"`
	SlotIndex  int         `json:"slotIndex"`
	LastAction ActionKind  `json:"lastActionKind"`
	Winner     bool        `json:"winner"`
	AutoDrawn  bool        `json:"autoDrawn"`
}

// DrawResult describes an accepted draw.
type DrawResult struct {
	Cards    []models.Card `json:"cards"`
	Playable bool          `json:"playable"`
}

// NextEligibleIndex steps from current in direction d until it lands on an occupied slot.
// It returns current if no other slot is occupied.
// Assumes lock is held.
func (r *Room) NextEligibleIndex(current int, d Direction) int {
	idx := current
	for i := 0; i < SlotCount; i++ {
		idx = ((idx+d.step())%SlotCount + SlotCount) % SlotCount
		if r.Slots[idx] != nil {
			return idx
		}
	}
	return current
}

// advanceUnsafe moves the turn pointer interval eligible slots in the current direction.
// Assumes lock is held.
func (r *Room) advanceUnsafe(interval int) {
	for i := 0; i < interval; i++ {
		r.Game.TurnIndex = r.NextEligibleIndex(r.Game.TurnIndex, r.Game.Direction)
	}
}

// seatOfUnsafe returns the slot holding username, or -1.
// Assumes lock is held.
func (r *Room) seatOfUnsafe(username string) int {
	for i, p := range r.Slots {
		if p != nil && p.Username == username {
			return i
		}
	}
	return -1
}

// OccupantCount returns the number of occupied slots.
// Assumes lock is held.
func (r *Room) OccupantCount() int {
	n := 0
	for _, p := range r.Slots {
		if p != nil {
			n++
		}
	}
	return n
}

// inGameUnsafe reports whether a game is being set up or played.
// Assumes lock is held.
func (r *Room) inGameUnsafe() bool {
	return r.Game.Status == StatusStarting || r.Game.Status == StatusPlaying
}

// Join seats p in the first empty slot.
func (r *Room) Join(p *models.Player) (int, *Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.inGameUnsafe() {
		return -1, nil, ErrGameInProgress
	}
	if r.seatOfUnsafe(p.Username) >= 0 {
		return -1, nil, newError(KindInvalidState, "player is already seated in this room")
	}
	slot := -1
	for i, occupant := range r.Slots {
		if occupant == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, nil, ErrRoomFull
	}
	if !p.ClaimRoom(r.ID) {
		return -1, nil, ErrSeatedElsewhere
	}

	p.Ready = false
	p.Hand = nil
	r.Slots[slot] = p
	log.Infof("Room %d: %s joined slot %d", r.ID, p.Username, slot)

	out := &Outbox{}
	r.queueRosterUnsafe(out)
	r.queueGameStateUnsafe(out)
	return slot, r.sendUnsafe(out), nil
}

// ToggleReady flips the ready flag of username and starts the game once every occupant
// is ready and there are at least two of them.
func (r *Room) ToggleReady(username string) (bool, *Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	i := r.seatOfUnsafe(username)
	if i < 0 {
		return false, nil, ErrNotSeated
	}
	if r.inGameUnsafe() {
		return false, nil, ErrGameInProgress
	}
	p := r.Slots[i]
	p.Ready = !p.Ready
	ready := p.Ready

	out := &Outbox{}
	if r.canStartUnsafe() {
		r.startUnsafe(out)
		return ready, r.sendUnsafe(out), nil
	}
	r.Game.Status = StatusWaiting
	r.queueRosterUnsafe(out)
	r.queueGameStateUnsafe(out)
	return ready, r.sendUnsafe(out), nil
}

// canStartUnsafe reports whether every occupant is ready and there are at least two.
// Assumes lock is held.
func (r *Room) canStartUnsafe() bool {
	n := 0
	for _, p := range r.Slots {
		if p == nil {
			continue
		}
		if !p.Ready {
			return false
		}
		n++
	}
	return n >= 2
}

// Start begins a new game if the start condition holds.
func (r *Room) Start() (*Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.inGameUnsafe() {
		return nil, ErrGameInProgress
	}
	if !r.canStartUnsafe() {
		return nil, ErrNotEnoughPlayers
	}
	out := &Outbox{}
	r.startUnsafe(out)
	return r.sendUnsafe(out), nil
}

// startUnsafe replaces the game, deals HandSize cards to each occupant in slot order
// and gives the first turn to the lowest occupied slot.
// Assumes lock is held and the start condition holds.
func (r *Room) startUnsafe(out *Outbox) {
	occupants := r.OccupantCount()
	g := NewGameState()
	g.Status = StatusStarting
	g.DeckCount = DeckCountFor(occupants, r.DeckCount)
	g.DrawPile = GenerateDeck(g.DeckCount, occupants)
	r.Game = g

	first := -1
	for i, p := range r.Slots {
		if p == nil {
			continue
		}
		if first < 0 {
			first = i
		}
		// a fresh deck always holds at least SlotCount*HandSize cards
		hand, _ := g.DrawCards(HandSize)
		p.Hand = hand
	}
	g.TurnIndex = first
	g.Status = StatusPlaying
	log.Infof("Room %d: game %s started with %d players and %d deck(s)", r.ID, g.ID, occupants, g.DeckCount)

	for i, p := range r.Slots {
		if p != nil {
			r.queueHandUnsafe(out, i)
		}
	}
	r.queueRosterUnsafe(out)
	r.queueGameStateUnsafe(out)
}

// finishUnsafe ends the current game and clears every ready flag.
// Assumes lock is held.
func (r *Room) finishUnsafe() {
	r.Game.Status = StatusFinished
	r.Game.DrawnPlayable = nil
	for _, p := range r.Slots {
		if p != nil {
			p.Ready = false
		}
	}
	log.Infof("Room %d: game %s finished", r.ID, r.Game.ID)
}

// actorUnsafe checks that username may act now and returns their slot.
// Assumes lock is held.
func (r *Room) actorUnsafe(username string) (int, error) {
	if r.Game.Status != StatusPlaying {
		return -1, ErrGameNotPlaying
	}
	i := r.seatOfUnsafe(username)
	if i < 0 {
		return -1, ErrNotSeated
	}
	if i != r.Game.TurnIndex {
		return -1, ErrNotYourTurn
	}
	return i, nil
}

// clearPlayableUnsafe drops the confirmation mark from the pending drawn card.
// Assumes lock is held.
func (r *Room) clearPlayableUnsafe() {
	if r.Game.DrawnPlayable != nil {
		r.Game.DrawnPlayable.Playable = false
		r.Game.DrawnPlayable = nil
	}
}

// PlayCard plays cardID from username's hand. chosen is required for wild cards.
// Every precondition is checked before anything is mutated.
func (r *Room) PlayCard(username, cardID string, chosen models.CardColor) (PlayResult, *Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	i, err := r.actorUnsafe(username)
	if err != nil {
		return PlayResult{}, nil, err
	}
	g := r.Game
	p := r.Slots[i]
	idx := p.FindCard(cardID)
	if idx < 0 {
		return PlayResult{}, nil, ErrCardNotInHand
	}
	card := p.Hand[idx]
	if g.DrawnPlayable != nil && g.DrawnPlayable != card {
		return PlayResult{}, nil, ErrAwaitingDecision
	}
	if !IsLegal(g.LastCard, g.ActiveColor, g.PendingDraw, card) {
		return PlayResult{}, nil, ErrIllegalCard
	}
	if card.IsWild() && !chosen.Valid() {
		return PlayResult{}, nil, ErrColorRequired
	}

	interval := 1
	direction := g.Direction
	pending := g.PendingDraw
	color := card.Color
	switch card.Kind {
	case models.KindAction:
		switch card.Number {
		case models.ActionSkip:
			interval++
		case models.ActionReverse:
			direction = direction.Reverse()
		}
	case models.KindWild:
		color = chosen
	}
	if card.IsDrawPenalty() {
		pending += card.PenaltyValue()
	} else {
		pending = 0
	}

	r.clearPlayableUnsafe()
	p.RemoveCard(idx)
	g.Discard(card)
	g.LastCard = card
	g.ActiveColor = color
	g.Direction = direction
	g.PendingDraw = pending
	g.LastAction = ActionPlay

	res := PlayResult{Card: *card, SlotIndex: i, LastAction: ActionPlay}
	out := &Outbox{}

	if len(p.Hand) == 0 {
		r.finishUnsafe()
		res.Winner = true
		log.Infof("Room %d: %s won game %s", r.ID, p.Username, g.ID)
		r.queueHandUnsafe(out, i)
		r.queueRosterUnsafe(out)
		r.queueGameStateUnsafe(out)
		out.add(r.occupantNamesUnsafe(), GameEvent{
			Type:   EventGameFinished,
			RoomID: r.ID,
			Payload: map[string]interface{}{
				"winner":      p.Username,
				"displayName": p.DisplayName(),
				"slotIndex":   i,
			},
		})
		return res, r.sendUnsafe(out), nil
	}

	if len(p.Hand) == 1 && p.Hand[0].Kind != models.KindNumber {
		extra, err := g.DrawCards(1)
		if err != nil {
			log.Warnf("Room %d: could not auto-draw for %s: %v", r.ID, p.Username, err)
		} else {
			p.Hand = append(p.Hand, extra...)
			res.AutoDrawn = true
		}
	}

	r.advanceUnsafe(interval)

	r.queueHandUnsafe(out, i)
	r.queueRosterUnsafe(out)
	r.queueGameStateUnsafe(out)
	return res, r.sendUnsafe(out), nil
}

// DrawCard resolves a draw for username. With no penalty pending a single card is drawn;
// if that card is playable it is kept marked for the player's decision and the turn stays put.
func (r *Room) DrawCard(username string) (DrawResult, *Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	i, err := r.actorUnsafe(username)
	if err != nil {
		return DrawResult{}, nil, err
	}
	g := r.Game
	if g.DrawnPlayable != nil {
		return DrawResult{}, nil, ErrAwaitingDecision
	}
	p := r.Slots[i]

	count := 1
	if g.PendingDraw > 0 {
		count = g.PendingDraw
	}
	if count > g.Available() {
		return DrawResult{}, nil, ErrNoCardsLeft
	}

	out := &Outbox{}
	if count == 1 {
		top := g.Peek()
		if top != nil && IsLegal(g.LastCard, g.ActiveColor, g.PendingDraw, top) {
			drawn, err := g.DrawCards(1)
			if err != nil {
				return DrawResult{}, nil, err
			}
			c := drawn[0]
			c.Playable = true
			g.DrawnPlayable = c
			p.Hand = append(p.Hand, c)

			r.queueHandUnsafe(out, i)
			r.queueRosterUnsafe(out)
			return DrawResult{Cards: []models.Card{*c}, Playable: true}, r.sendUnsafe(out), nil
		}
	}

	drawn, err := g.DrawCards(count)
	if err != nil {
		return DrawResult{}, nil, err
	}
	p.Hand = append(p.Hand, drawn...)
	g.PendingDraw = 0
	g.LastAction = ActionDraw
	r.advanceUnsafe(1)

	res := DrawResult{Cards: make([]models.Card, len(drawn))}
	for k, c := range drawn {
		res.Cards[k] = *c
	}
	r.queueHandUnsafe(out, i)
	r.queueRosterUnsafe(out)
	r.queueGameStateUnsafe(out)
	return res, r.sendUnsafe(out), nil
}

// SkipTurn passes on the playable card drawn this turn and ends the turn.
func (r *Room) SkipTurn(username string) (*Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	i, err := r.actorUnsafe(username)
	if err != nil {
		return nil, err
	}
	if r.Game.DrawnPlayable == nil {
		return nil, ErrNothingToSkip
	}
	r.clearPlayableUnsafe()
	r.Game.LastAction = ActionDraw
	r.advanceUnsafe(1)

	out := &Outbox{}
	r.queueHandUnsafe(out, i)
	r.queueGameStateUnsafe(out)
	return r.sendUnsafe(out), nil
}

// Leave vacates username's slot. During a game the leaver's hand is folded into the used
// pile, unless at most one player remains, in which case the game ends without a winner.
func (r *Room) Leave(username string) (*models.Player, *Outbox, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	i := r.seatOfUnsafe(username)
	if i < 0 {
		return nil, nil, ErrNotSeated
	}
	p := r.Slots[i]
	hand := p.Hand
	p.Ready = false
	p.Hand = nil
	r.Slots[i] = nil
	p.ReleaseRoom(r.ID)
	log.Infof("Room %d: %s left slot %d", r.ID, p.Username, i)

	g := r.Game
	if r.inGameUnsafe() {
		if g.DrawnPlayable != nil && g.TurnIndex == i {
			g.DrawnPlayable.Playable = false
			g.DrawnPlayable = nil
		}
		if r.OccupantCount() <= 1 {
			r.finishUnsafe()
		} else {
			g.Discard(hand...)
			if g.TurnIndex == i {
				g.TurnIndex = r.NextEligibleIndex(i, g.Direction)
			}
		}
	}

	out := &Outbox{}
	r.queueRosterUnsafe(out)
	r.queueGameStateUnsafe(out)
	return p, r.sendUnsafe(out), nil
}

// CardCount is the number of cards in play: both piles plus every seated hand.
func (r *Room) CardCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	n := r.Game.PileCount()
	for _, p := range r.Slots {
		if p != nil {
			n += len(p.Hand)
		}
	}
	return n
}
