// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CardKind is the broad category of a card.
type CardKind int

const (
	KindNumber CardKind = 1
	KindAction CardKind = 2
	KindWild   CardKind = 3
)

func (k CardKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindAction:
		return "action"
	case KindWild:
		return "wild"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action card numbers.
const (
	ActionSkip    = 1
	ActionReverse = 2
	ActionDrawTwo = 3
)

// Wild card numbers.
const (
	WildPlain    = 1
	WildDrawFour = 2
)

// CardColor is one of the four suit colors. ColorNone marks a wild card.
type CardColor int

const (
	ColorNone CardColor = iota
	ColorRed
	ColorYellow
	ColorBlue
	ColorGreen
)

// Colors lists the four playable colors in sort order.
var Colors = []CardColor{ColorRed, ColorYellow, ColorBlue, ColorGreen}

var colorNames = map[CardColor]string{
	ColorRed:    "red",
	ColorYellow: "yellow",
	ColorBlue:   "blue",
	ColorGreen:  "green",
}

func (c CardColor) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "none"
}

// Valid reports whether c is one of the four real colors.
func (c CardColor) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

// ParseColor maps a lower-case color name to its CardColor. Empty input yields ColorNone.
func ParseColor(s string) (CardColor, error) {
	if s == "" {
		return ColorNone, nil
	}
	for c, name := range colorNames {
		if name == s {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("unknown color %q", s)
}

func (c CardColor) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *CardColor) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ColorNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Card is a single physical card. Playable is set when a drawn card is offered back
// to its owner for confirmation.
type Card struct {
	ID       uuid.UUID `json:"id"`
	Kind     CardKind  `json:"kind"`
	Number   int       `json:"number"`
	Color    CardColor `json:"color"`
	Playable bool      `json:"playable"`
}

func NewCard(kind CardKind, number int, color CardColor) *Card {
	return &Card{
		ID:     uuid.New(),
		Kind:   kind,
		Number: number,
		Color:  color,
	}
}

func (c *Card) IsWild() bool {
	return c.Kind == KindWild
}

// IsDrawPenalty reports whether the card adds to the pending draw count.
func (c *Card) IsDrawPenalty() bool {
	return (c.Kind == KindAction && c.Number == ActionDrawTwo) ||
		(c.Kind == KindWild && c.Number == WildDrawFour)
}

// PenaltyValue is the number of cards the card adds to the pending draw count.
func (c *Card) PenaltyValue() int {
	switch {
	case c.Kind == KindAction && c.Number == ActionDrawTwo:
		return 2
	case c.Kind == KindWild && c.Number == WildDrawFour:
		return 4
	}
	return 0
}

func (c *Card) IsWildDrawFour() bool {
	return c.Kind == KindWild && c.Number == WildDrawFour
}

func (c *Card) String() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("%s %d", c.Color, c.Number)
	case KindAction:
		names := map[int]string{ActionSkip: "skip", ActionReverse: "reverse", ActionDrawTwo: "draw two"}
		return fmt.Sprintf("%s %s", c.Color, names[c.Number])
	case KindWild:
		if c.Number == WildDrawFour {
			return "wild draw four"
		}
		return "wild"
	}
	return "unknown card"
}
