package models

import (
	"strings"
	"sync"
)

// NormalizeUsername returns the directory key for a username as typed by a client.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Player is the long-lived record for one identity. It outlives connections and rooms.
//
// Ready and Hand belong to the room the player is seated in and must only be touched
// while that room's lock is held. The seat claim and display name have their own lock.
type Player struct {
	Username string `json:"username"`

	Ready bool    `json:"ready"`
	Hand  []*Card `json:"-"`

	mu          sync.Mutex
	displayName string
	roomID      int
}

func NewPlayer(displayName string) *Player {
	return &Player{
		Username:    NormalizeUsername(displayName),
		displayName: strings.TrimSpace(displayName),
	}
}

func (p *Player) DisplayName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayName
}

// SetDisplayName records the casing used on the most recent login.
func (p *Player) SetDisplayName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.displayName = strings.TrimSpace(name)
}

// ClaimRoom seats the player in roomID. It fails if the player is already seated elsewhere;
// claiming the room the player already holds succeeds.
func (p *Player) ClaimRoom(roomID int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.roomID != 0 && p.roomID != roomID {
		return false
	}
	p.roomID = roomID
	return true
}

// ReleaseRoom clears the seat claim if it still points at roomID.
func (p *Player) ReleaseRoom(roomID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.roomID == roomID {
		p.roomID = 0
	}
}

// RoomID returns the room the player is seated in, or 0.
func (p *Player) RoomID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomID
}

// FindCard returns the index of the card with the given id in the hand, or -1.
func (p *Player) FindCard(id string) int {
	for i, c := range p.Hand {
		if c.ID.String() == id {
			return i
		}
	}
	return -1
}

// RemoveCard drops the card at index i from the hand and returns it.
func (p *Player) RemoveCard(i int) *Card {
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return c
}
