// internal/game/deck.go
package game

import (
	"encoding/binary"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

const (
	// CardsPerDeck is the size of one full deck.
	CardsPerDeck = 108
	// shufflePasses is the number of full Fisher-Yates passes run on every shuffle.
	shufflePasses = 5
)

// newRand returns a source seeded from a fresh random UUID so concurrent callers never share a stream.
func newRand() *rand.Rand {
	id := uuid.New()
	seed := int64(binary.LittleEndian.Uint64(id[:8]) ^ binary.LittleEndian.Uint64(id[8:]))
	return rand.New(rand.NewSource(seed))
}

// multiPassShuffle shuffles cards in place with several full passes.
func multiPassShuffle(r *rand.Rand, cards []*models.Card) {
	for pass := 0; pass < shufflePasses; pass++ {
		for i := len(cards) - 1; i > 0; i-- {
			j := r.Intn(i + 1)
			cards[i], cards[j] = cards[j], cards[i]
		}
	}
}

// buildDeck returns deckCount unshuffled decks.
func buildDeck(deckCount int) []*models.Card {
	deck := make([]*models.Card, 0, CardsPerDeck*deckCount)
	for d := 0; d < deckCount; d++ {
		for i := 0; i < 4; i++ {
			deck = append(deck,
				models.NewCard(models.KindWild, models.WildPlain, models.ColorNone),
				models.NewCard(models.KindWild, models.WildDrawFour, models.ColorNone),
			)
		}
		for _, color := range models.Colors {
			for _, action := range []int{models.ActionSkip, models.ActionReverse, models.ActionDrawTwo} {
				deck = append(deck,
					models.NewCard(models.KindAction, action, color),
					models.NewCard(models.KindAction, action, color),
				)
			}
			deck = append(deck, models.NewCard(models.KindNumber, 0, color))
			for n := 1; n <= 9; n++ {
				deck = append(deck,
					models.NewCard(models.KindNumber, n, color),
					models.NewCard(models.KindNumber, n, color),
				)
			}
		}
	}
	return deck
}

// GenerateDeck builds and shuffles deckCount decks for a table of occupantCount players.
// No WildDrawFour is left in the first occupantCount*HandSize cards, which become the opening hands.
func GenerateDeck(deckCount, occupantCount int) []*models.Card {
	if deckCount < 1 {
		deckCount = 1
	}
	r := newRand()
	deck := buildDeck(deckCount)
	multiPassShuffle(r, deck)

	prefix := occupantCount * HandSize
	if prefix >= len(deck) {
		return deck
	}
	for i := 0; i < prefix; i++ {
		for deck[i].IsWildDrawFour() {
			card := deck[i]
			deck = append(deck[:i], deck[i+1:]...)
			// after removal the tail starts at prefix-1; inserting at pos >= prefix lands strictly after the prefix
			pos := prefix + r.Intn(len(deck)-prefix+1)
			deck = append(deck, nil)
			copy(deck[pos+1:], deck[pos:])
			deck[pos] = card
		}
	}
	return deck
}

// DeckCountFor returns the number of decks used for a table. A positive configured value wins;
// otherwise one deck covers up to five occupants and two decks cover the rest.
func DeckCountFor(occupants, configured int) int {
	if configured > 0 {
		return configured
	}
	if occupants > 5 {
		return 2
	}
	return 1
}
