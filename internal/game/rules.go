// internal/game/rules.go
package game

import "github.com/jason-s-yu/uno/internal/models"

// IsLegal reports whether candidate may be played on top of last.
// Rules apply in order:
//  1. nothing played yet: anything goes
//  2. a draw penalty is pending on a DrawTwo/WildDrawFour: only another draw card stacks
//  3. wilds are always playable
//  4. matching the active color
//  5. matching kind and number of the last card
func IsLegal(last *models.Card, activeColor models.CardColor, pendingDraw int, candidate *models.Card) bool {
	if candidate == nil {
		return false
	}
	if last == nil {
		return true
	}
	if last.IsDrawPenalty() && pendingDraw > 0 {
		return candidate.IsDrawPenalty()
	}
	if candidate.IsWild() {
		return true
	}
	if candidate.Color == activeColor {
		return true
	}
	return candidate.Kind == last.Kind && candidate.Number == last.Number
}
