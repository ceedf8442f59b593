package game

import (
	"sort"
	"sync"
)

// RoomStore is the fixed pool of rooms created at startup.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[int]*Room
}

// NewRoomStore creates one room per id. deckCount is passed to every room.
func NewRoomStore(ids []int, deckCount int) *RoomStore {
	s := &RoomStore{
		rooms: make(map[int]*Room, len(ids)),
	}
	for _, id := range ids {
		s.rooms[id] = NewRoom(id, deckCount)
	}
	return s
}

func (s *RoomStore) GetRoom(id int) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.rooms[id]
	return r, exists
}

// RoomIDs returns the ids of every room in ascending order.
func (s *RoomStore) RoomIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetSender installs send on every room.
func (s *RoomStore) SetSender(send Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		r.SetSender(send)
	}
}
