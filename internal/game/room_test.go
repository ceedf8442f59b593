package game

import (
	"fmt"
	"testing"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRoom seats n players through Join and readies all of them, which starts the game.
func setupTestRoom(t *testing.T, n int) (*Room, []*models.Player) {
	t.Helper()
	r := NewRoom(1, 1)
	players := make([]*models.Player, n)
	for i := 0; i < n; i++ {
		players[i] = models.NewPlayer(fmt.Sprintf("Player%d", i))
		slot, _, err := r.Join(players[i])
		require.NoError(t, err)
		require.Equal(t, i, slot)
	}
	for _, p := range players {
		_, _, err := r.ToggleReady(p.Username)
		require.NoError(t, err)
	}
	require.Equal(t, StatusPlaying, r.Game.Status)
	return r, players
}

// rigRoom builds a playing room with players at the given slots holding the given hands.
// The table shows last with active color set to last's color (or active if last is wild).
func rigRoom(t *testing.T, slots []int, hands [][]*models.Card, last *models.Card, active models.CardColor) (*Room, []*models.Player) {
	t.Helper()
	require.Equal(t, len(slots), len(hands))
	r := NewRoom(1, 1)
	players := make([]*models.Player, len(slots))
	for i, s := range slots {
		p := models.NewPlayer(fmt.Sprintf("p%d", s))
		require.True(t, p.ClaimRoom(r.ID))
		p.Ready = true
		p.Hand = hands[i]
		r.Slots[s] = p
		players[i] = p
	}
	g := r.Game
	g.Status = StatusPlaying
	g.TurnIndex = slots[0]
	if last != nil {
		g.LastCard = last
		g.UsedPile = []*models.Card{last}
		g.ActiveColor = active
	}
	for i := 0; i < 20; i++ {
		g.DrawPile = append(g.DrawPile, num(i%10, models.ColorYellow))
	}
	return r, players
}

func eventsOfType(out *Outbox, typ GameEventType) []Delivery {
	var found []Delivery
	for _, d := range out.Deliveries() {
		if d.Event.Type == typ {
			found = append(found, d)
		}
	}
	return found
}

func TestStartDealsHands(t *testing.T) {
	r, players := setupTestRoom(t, 2)

	for _, p := range players {
		assert.Len(t, p.Hand, HandSize)
		assert.True(t, p.Ready)
	}
	assert.Len(t, r.Game.DrawPile, CardsPerDeck-2*HandSize)
	assert.Empty(t, r.Game.UsedPile)
	assert.Nil(t, r.Game.LastCard)
	assert.Equal(t, 0, r.Game.TurnIndex)
	assert.Equal(t, Clockwise, r.Game.Direction)
	assert.Equal(t, 0, r.Game.PendingDraw)
	assert.Equal(t, CardsPerDeck, r.CardCount())
}

func TestToggleReadyEmitsStartEvents(t *testing.T) {
	r := NewRoom(3, 0)
	a, b := models.NewPlayer("Alice"), models.NewPlayer("Bob")
	_, _, err := r.Join(a)
	require.NoError(t, err)
	_, _, err = r.Join(b)
	require.NoError(t, err)

	ready, out, err := r.ToggleReady("alice")
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, StatusWaiting, r.Game.Status)
	assert.Empty(t, eventsOfType(out, EventUpdateHandCards))

	_, out, err = r.ToggleReady("bob")
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, r.Game.Status)

	hands := eventsOfType(out, EventUpdateHandCards)
	require.Len(t, hands, 2)
	for _, d := range hands {
		require.Len(t, d.Recipients, 1)
		assert.Equal(t, d.Recipients[0], d.Event.Hand.Username)
		assert.Len(t, d.Event.Hand.Cards, HandSize)
	}
	roster := eventsOfType(out, EventUpdateRoomPlayers)
	require.Len(t, roster, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, roster[0].Recipients)
	assert.Equal(t, HandSize, roster[0].Event.Players[0].HandCount)
	assert.Nil(t, roster[0].Event.Players[2])
}

func TestToggleReadyUnreadyRevertsToWaiting(t *testing.T) {
	r := NewRoom(1, 1)
	p := models.NewPlayer("solo")
	_, _, err := r.Join(p)
	require.NoError(t, err)

	ready, _, err := r.ToggleReady("solo")
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, StatusWaiting, r.Game.Status, "one ready player is not enough")

	ready, _, err = r.ToggleReady("solo")
	require.NoError(t, err)
	assert.False(t, ready)

	_, _, err = r.ToggleReady("ghost")
	assert.ErrorIs(t, err, ErrNotSeated)
}

func TestStartRequiresTwoReadyPlayers(t *testing.T) {
	r := NewRoom(1, 1)
	_, err := r.Start()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, KindInvalidState, KindOf(err))

	a, b := models.NewPlayer("a"), models.NewPlayer("b")
	_, _, _ = r.Join(a)
	_, _, _ = r.Join(b)
	a.Ready = true
	_, err = r.Start()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	b.Ready = true
	_, err = r.Start()
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, r.Game.Status)

	_, err = r.Start()
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestJoinRules(t *testing.T) {
	r, _ := setupTestRoom(t, 2)
	late := models.NewPlayer("late")
	_, _, err := r.Join(late)
	assert.ErrorIs(t, err, ErrGameInProgress)
	assert.Equal(t, 0, late.RoomID())

	full := NewRoom(2, 1)
	for i := 0; i < SlotCount; i++ {
		_, _, err := full.Join(models.NewPlayer(fmt.Sprintf("x%d", i)))
		require.NoError(t, err)
	}
	_, _, err = full.Join(late)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 0, late.RoomID(), "a rejected join must not keep the seat claim")

	other := NewRoom(3, 1)
	_, _, err = other.Join(late)
	require.NoError(t, err)
	_, _, err = other.Join(late)
	assert.Equal(t, KindInvalidState, KindOf(err))

	_, _, err = NewRoom(4, 1).Join(late)
	assert.ErrorIs(t, err, ErrSeatedElsewhere)
}

func TestNextEligibleIndexWraps(t *testing.T) {
	r := NewRoom(1, 1)
	r.Slots[1] = models.NewPlayer("a")
	r.Slots[6] = models.NewPlayer("b")

	assert.Equal(t, 1, r.NextEligibleIndex(6, Clockwise))
	assert.Equal(t, 6, r.NextEligibleIndex(1, Clockwise))
	assert.Equal(t, 6, r.NextEligibleIndex(1, Anticlockwise))
	assert.Equal(t, 1, r.NextEligibleIndex(6, Anticlockwise))

	r.Slots[6] = nil
	assert.Equal(t, 1, r.NextEligibleIndex(1, Clockwise), "lone occupant keeps the turn")
}

func TestPlayNumberAdvancesOneSlot(t *testing.T) {
	c := num(4, models.ColorRed)
	r, players := rigRoom(t, []int{0, 2, 5},
		[][]*models.Card{{c, num(1, models.ColorBlue)}, {num(2, models.ColorBlue)}, {num(3, models.ColorBlue)}},
		num(7, models.ColorRed), models.ColorRed)

	res, out, err := r.PlayCard(players[0].Username, c.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, 0, res.SlotIndex)
	assert.Equal(t, ActionPlay, res.LastAction)
	assert.Equal(t, c.ID, res.Card.ID)
	assert.Equal(t, 2, r.Game.TurnIndex)
	assert.Same(t, c, r.Game.LastCard)
	assert.Equal(t, models.ColorRed, r.Game.ActiveColor)
	assert.Len(t, players[0].Hand, 1)
	assert.Len(t, eventsOfType(out, EventUpdateGameState), 1)
	assert.Empty(t, eventsOfType(out, EventGameFinished))
}

func TestPlaySkipAdvancesTwoEligibleSlots(t *testing.T) {
	skip := action(models.ActionSkip, models.ColorRed)
	r, players := rigRoom(t, []int{0, 2, 5},
		[][]*models.Card{{skip, num(1, models.ColorBlue), num(2, models.ColorBlue)}, {num(2, models.ColorBlue)}, {num(3, models.ColorBlue)}},
		num(7, models.ColorRed), models.ColorRed)

	_, _, err := r.PlayCard(players[0].Username, skip.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Game.TurnIndex)
}

func TestReverseTwiceRestoresDirection(t *testing.T) {
	rev1 := action(models.ActionReverse, models.ColorRed)
	rev2 := action(models.ActionReverse, models.ColorBlue)
	r, players := rigRoom(t, []int{0, 2, 5},
		[][]*models.Card{{rev1, num(1, models.ColorBlue), num(2, models.ColorBlue)}, {num(2, models.ColorBlue)}, {rev2, num(3, models.ColorBlue), num(4, models.ColorBlue)}},
		num(7, models.ColorRed), models.ColorRed)

	_, _, err := r.PlayCard(players[0].Username, rev1.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, Anticlockwise, r.Game.Direction)
	assert.Equal(t, 5, r.Game.TurnIndex)

	_, _, err = r.PlayCard(players[2].Username, rev2.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, Clockwise, r.Game.Direction)
	assert.Equal(t, 0, r.Game.TurnIndex)
}

func TestPlayDrawTwoThenDraw(t *testing.T) {
	d2 := action(models.ActionDrawTwo, models.ColorRed)
	red7 := num(7, models.ColorRed)
	r, players := rigRoom(t, []int{0, 1, 2},
		[][]*models.Card{{d2, num(1, models.ColorBlue), num(2, models.ColorBlue)}, {red7, num(8, models.ColorBlue)}, {num(3, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	_, _, err := r.PlayCard(players[0].Username, d2.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Game.PendingDraw)
	assert.Equal(t, 1, r.Game.TurnIndex)

	_, _, err = r.PlayCard(players[1].Username, red7.ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrIllegalCard)
	assert.Equal(t, KindInvalidMove, KindOf(err))

	res, _, err := r.DrawCard(players[1].Username)
	require.NoError(t, err)
	assert.Len(t, res.Cards, 2)
	assert.False(t, res.Playable)
	assert.Len(t, players[1].Hand, 4)
	assert.Equal(t, 0, r.Game.PendingDraw)
	assert.Equal(t, 2, r.Game.TurnIndex)
	assert.Equal(t, ActionDraw, r.Game.LastAction)
}

func TestPlayDrawTwoStacks(t *testing.T) {
	d2a := action(models.ActionDrawTwo, models.ColorRed)
	d2b := action(models.ActionDrawTwo, models.ColorGreen)
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{d2a, num(1, models.ColorBlue), num(2, models.ColorBlue)}, {d2b, num(8, models.ColorBlue), num(9, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	_, _, err := r.PlayCard(players[0].Username, d2a.ID.String(), models.ColorNone)
	require.NoError(t, err)
	_, _, err = r.PlayCard(players[1].Username, d2b.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Game.PendingDraw)
	assert.Equal(t, models.ColorGreen, r.Game.ActiveColor)

	res, _, err := r.DrawCard(players[0].Username)
	require.NoError(t, err)
	assert.Len(t, res.Cards, 4)
	assert.Equal(t, 0, r.Game.PendingDraw)
}

func TestPlayWildDrawFourSetsChosenColor(t *testing.T) {
	wdf := wildDrawFour()
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{wdf, num(1, models.ColorRed), num(2, models.ColorRed)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	_, _, err := r.PlayCard(players[0].Username, wdf.ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrColorRequired)
	assert.Len(t, players[0].Hand, 3, "rejected play must not mutate")
	assert.Equal(t, 0, r.Game.TurnIndex)

	_, _, err = r.PlayCard(players[0].Username, wdf.ID.String(), models.ColorBlue)
	require.NoError(t, err)
	assert.Equal(t, models.ColorBlue, r.Game.ActiveColor)
	assert.Equal(t, models.ColorNone, r.Game.LastCard.Color)
	assert.Equal(t, 4, r.Game.PendingDraw)
	assert.Equal(t, 1, r.Game.TurnIndex)
}

func TestPlayNonPenaltyBreaksChain(t *testing.T) {
	w := wild()
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{w, num(1, models.ColorRed), num(2, models.ColorRed)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)
	r.Game.PendingDraw = 3

	_, _, err := r.PlayCard(players[0].Username, w.ID.String(), models.ColorGreen)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Game.PendingDraw)
}

func TestPlayRejections(t *testing.T) {
	c := num(4, models.ColorRed)
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{c, num(1, models.ColorBlue)}, {num(2, models.ColorRed)}},
		num(7, models.ColorRed), models.ColorRed)

	_, _, err := r.PlayCard(players[1].Username, players[1].Hand[0].ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, _, err = r.PlayCard(players[0].Username, players[1].Hand[0].ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrCardNotInHand)
	assert.Equal(t, KindDataIntegrity, KindOf(err))

	_, _, err = r.PlayCard("nobody", c.ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrNotSeated)

	r.Game.Status = StatusFinished
	_, _, err = r.PlayCard(players[0].Username, c.ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrGameNotPlaying)
	_, _, err = r.DrawCard(players[0].Username)
	assert.ErrorIs(t, err, ErrGameNotPlaying)
}

func TestPlayLeavingLoneActionCardAutoDraws(t *testing.T) {
	red3 := num(3, models.ColorRed)
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{red3, action(models.ActionSkip, models.ColorBlue)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)
	drawBefore := len(r.Game.DrawPile)

	res, _, err := r.PlayCard(players[0].Username, red3.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.True(t, res.AutoDrawn)
	assert.Len(t, players[0].Hand, 2)
	assert.Len(t, r.Game.DrawPile, drawBefore-1)
	assert.Equal(t, 1, r.Game.TurnIndex)
}

func TestPlayLeavingLoneNumberCardDoesNotDraw(t *testing.T) {
	red3 := num(3, models.ColorRed)
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{red3, num(9, models.ColorBlue)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	res, _, err := r.PlayCard(players[0].Username, red3.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.False(t, res.AutoDrawn)
	assert.Len(t, players[0].Hand, 1)
}

func TestPlayWinningCardFinishesGame(t *testing.T) {
	last := num(9, models.ColorRed)
	r, players := rigRoom(t, []int{0, 3},
		[][]*models.Card{{last}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	res, out, err := r.PlayCard(players[0].Username, last.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.True(t, res.Winner)
	assert.Equal(t, StatusFinished, r.Game.Status)
	assert.Equal(t, 0, r.Game.TurnIndex, "turn does not advance after a win")
	for _, p := range players {
		assert.False(t, p.Ready)
	}
	assert.Contains(t, r.Game.UsedPile, last)

	finished := eventsOfType(out, EventGameFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, players[0].Username, finished[0].Event.Payload["winner"])
	assert.ElementsMatch(t, []string{"p0", "p3"}, finished[0].Recipients)

	_, _, err = r.DrawCard(players[1].Username)
	assert.ErrorIs(t, err, ErrGameNotPlaying)

	// a finished room accepts readying for the next round
	_, _, err = r.ToggleReady(players[0].Username)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, r.Game.Status)
	_, _, err = r.ToggleReady(players[1].Username)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, r.Game.Status)
	assert.Equal(t, CardsPerDeck, r.CardCount())
}

func TestDrawPlayableCardAwaitsDecision(t *testing.T) {
	keep := num(1, models.ColorBlue)
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{keep, num(2, models.ColorBlue)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)
	top := num(8, models.ColorRed)
	r.Game.DrawPile = append([]*models.Card{top}, r.Game.DrawPile...)

	res, out, err := r.DrawCard(players[0].Username)
	require.NoError(t, err)
	assert.True(t, res.Playable)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, top.ID, res.Cards[0].ID)
	assert.True(t, top.Playable)
	assert.Equal(t, 0, r.Game.TurnIndex, "turn stays with the drawer")
	assert.Equal(t, ActionNone, r.Game.LastAction)

	hands := eventsOfType(out, EventUpdateHandCards)
	require.Len(t, hands, 1)
	assert.True(t, hands[0].Event.Hand.AutoPlayCandidate)

	_, _, err = r.DrawCard(players[0].Username)
	assert.ErrorIs(t, err, ErrAwaitingDecision)
	_, _, err = r.PlayCard(players[0].Username, keep.ID.String(), models.ColorNone)
	assert.ErrorIs(t, err, ErrAwaitingDecision)

	_, _, err = r.PlayCard(players[0].Username, top.ID.String(), models.ColorNone)
	require.NoError(t, err)
	assert.False(t, top.Playable)
	assert.Nil(t, r.Game.DrawnPlayable)
	assert.Equal(t, 1, r.Game.TurnIndex)
}

func TestSkipTurnAfterPlayableDraw(t *testing.T) {
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{num(1, models.ColorBlue)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	_, err := r.SkipTurn(players[0].Username)
	assert.ErrorIs(t, err, ErrNothingToSkip)

	top := num(5, models.ColorGreen)
	r.Game.DrawPile = append([]*models.Card{top}, r.Game.DrawPile...)
	res, _, err := r.DrawCard(players[0].Username)
	require.NoError(t, err)
	require.True(t, res.Playable)

	_, err = r.SkipTurn(players[0].Username)
	require.NoError(t, err)
	assert.False(t, top.Playable)
	assert.Equal(t, 1, r.Game.TurnIndex)
	assert.Equal(t, ActionDraw, r.Game.LastAction)
	assert.Len(t, players[0].Hand, 2)
}

func TestDrawUnplayableCardEndsTurn(t *testing.T) {
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{num(1, models.ColorBlue)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)

	res, _, err := r.DrawCard(players[0].Username)
	require.NoError(t, err)
	assert.False(t, res.Playable)
	assert.Len(t, res.Cards, 1)
	assert.Equal(t, 1, r.Game.TurnIndex)
	assert.Equal(t, ActionDraw, r.Game.LastAction)
}

func TestDrawWithNoCardsLeft(t *testing.T) {
	r, players := rigRoom(t, []int{0, 1},
		[][]*models.Card{{num(1, models.ColorBlue)}, {num(8, models.ColorBlue)}},
		num(5, models.ColorRed), models.ColorRed)
	r.Game.DrawPile = nil

	_, _, err := r.DrawCard(players[0].Username)
	assert.ErrorIs(t, err, ErrNoCardsLeft)
	assert.Equal(t, 0, r.Game.TurnIndex)
}

func TestLeaveFoldsHandAndMovesTurn(t *testing.T) {
	r, players := setupTestRoom(t, 3)
	require.Equal(t, 0, r.Game.TurnIndex)
	usedBefore := len(r.Game.UsedPile)

	p, out, err := r.Leave(players[0].Username)
	require.NoError(t, err)
	assert.Same(t, players[0], p)
	assert.Nil(t, r.Slots[0])
	assert.Empty(t, players[0].Hand)
	assert.Equal(t, 0, players[0].RoomID())
	assert.Len(t, r.Game.UsedPile, usedBefore+HandSize)
	assert.Equal(t, StatusPlaying, r.Game.Status)
	assert.Equal(t, 1, r.Game.TurnIndex)
	assert.Equal(t, CardsPerDeck, r.CardCount())

	roster := eventsOfType(out, EventUpdateRoomPlayers)
	require.Len(t, roster, 1)
	assert.ElementsMatch(t, []string{players[1].Username, players[2].Username}, roster[0].Recipients)
}

func TestLeaveDownToOnePlayerFinishesWithoutFolding(t *testing.T) {
	r, players := setupTestRoom(t, 2)
	usedBefore := len(r.Game.UsedPile)

	_, _, err := r.Leave(players[1].Username)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, r.Game.Status)
	assert.False(t, players[0].Ready)
	assert.Len(t, r.Game.UsedPile, usedBefore, "no hand is folded on attrition")
	assert.Equal(t, CardsPerDeck-HandSize, r.CardCount())

	_, _, err = r.Leave(players[1].Username)
	assert.ErrorIs(t, err, ErrNotSeated)
}

func TestLeaveWhileWaiting(t *testing.T) {
	r := NewRoom(1, 1)
	p := models.NewPlayer("x")
	_, _, err := r.Join(p)
	require.NoError(t, err)

	_, _, err = r.Leave("x")
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, r.Game.Status)
	assert.Equal(t, 0, r.OccupantCount())
}

// TestCardConservationOverFullGames plays real games greedily and checks that no card
// is created or lost after any action.
func TestCardConservationOverFullGames(t *testing.T) {
	for round := 0; round < 10; round++ {
		r, _ := setupTestRoom(t, 4)
		for step := 0; step < 2000 && r.Game.Status == StatusPlaying; step++ {
			actor := r.Slots[r.Game.TurnIndex]
			require.NotNil(t, actor, "turn pointer must address an occupied slot")

			var choice *models.Card
			if r.Game.DrawnPlayable != nil {
				choice = r.Game.DrawnPlayable
			} else if playable := playableCards(actor.Hand, r.Game.LastCard, r.Game.ActiveColor, r.Game.PendingDraw); len(playable) > 0 {
				choice = playable[0]
			}

			var err error
			if choice != nil {
				_, _, err = r.PlayCard(actor.Username, choice.ID.String(), models.ColorGreen)
			} else {
				_, _, err = r.DrawCard(actor.Username)
			}
			if KindOf(err) == KindInvalidState {
				break
			}
			require.NoError(t, err)
			require.Equal(t, CardsPerDeck, r.CardCount(), "step %d", step)
			require.GreaterOrEqual(t, r.Game.PendingDraw, 0)
		}
	}
}

func TestSenderRunsBeforeLockIsReleased(t *testing.T) {
	r := NewRoom(1, 1)
	type sent struct {
		user string
		typ  GameEventType
	}
	var got []sent
	r.SetSender(func(username string, ev GameEvent) {
		assert.False(t, r.Mu.TryLock(), "room must still be locked while sending")
		got = append(got, sent{username, ev.Type})
	})

	a, b := models.NewPlayer("a"), models.NewPlayer("b")
	_, _, err := r.Join(a)
	require.NoError(t, err)
	_, _, err = r.Join(b)
	require.NoError(t, err)

	got = nil
	_, out, err := r.ToggleReady("a")
	require.NoError(t, err)

	var want []sent
	out.Flush(func(username string, ev GameEvent) {
		want = append(want, sent{username, ev.Type})
	})
	assert.Equal(t, want, got)
	assert.NotEmpty(t, got)

	// rejected operations send nothing
	got = nil
	_, _, err = r.PlayCard("a", "nope", models.ColorNone)
	require.Error(t, err)
	assert.Empty(t, got)
}
