package game

import "errors"

// ErrorKind classifies a rejected command. Every kind is recoverable.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidState
	KindInvalidMove
	KindDataIntegrity
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidMove:
		return "invalid_move"
	case KindDataIntegrity:
		return "data_integrity"
	}
	return "internal"
}

// Error is a classified rejection with a message meant for the acting player.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrRoomNotFound     = newError(KindNotFound, "room not found")
	ErrPlayerNotFound   = newError(KindNotFound, "player not found")
	ErrNotSeated        = newError(KindNotFound, "player is not seated in this room")
	ErrGameInProgress   = newError(KindInvalidState, "a game is already in progress in this room")
	ErrGameNotPlaying   = newError(KindInvalidState, "no game is in progress in this room")
	ErrRoomFull         = newError(KindInvalidState, "room is full")
	ErrSeatedElsewhere  = newError(KindInvalidState, "player is already seated in another room")
	ErrNotEnoughPlayers = newError(KindInvalidState, "at least two ready players are required to start")
	ErrNoCardsLeft      = newError(KindInvalidState, "not enough cards left to draw")
	ErrNotYourTurn      = newError(KindInvalidMove, "it is not your turn")
	ErrIllegalCard      = newError(KindInvalidMove, "that card cannot be played now")
	ErrColorRequired    = newError(KindInvalidMove, "a color must be chosen for a wild card")
	ErrAwaitingDecision = newError(KindInvalidMove, "play or skip the card you just drew")
	ErrNothingToSkip    = newError(KindInvalidMove, "there is no drawn card to skip")
	ErrCardNotInHand    = newError(KindDataIntegrity, "card is not in your hand")
)

// KindOf returns the kind of a classified error, or KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
