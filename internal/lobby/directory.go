package lobby

import (
	"errors"
	"sort"
	"sync"

	"github.com/jason-s-yu/uno/internal/models"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyUsername = errors.New("username must not be empty")

// Directory is the process-wide set of known identities, keyed by normalized username.
// Records are never removed.
type Directory struct {
	mu      sync.Mutex
	players map[string]*models.Player
}

func NewDirectory() *Directory {
	return &Directory{
		players: make(map[string]*models.Player),
	}
}

// Login returns the record for name, creating it on first sight. An existing record keeps
// its state and only takes the newly typed display name.
func (d *Directory) Login(name string) (*models.Player, bool, error) {
	key := models.NormalizeUsername(name)
	if key == "" {
		return nil, false, ErrEmptyUsername
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.players[key]; ok {
		p.SetDisplayName(name)
		return p, false, nil
	}
	p := models.NewPlayer(name)
	d.players[key] = p
	log.Infof("Directory: registered %s", key)
	return p, true, nil
}

// Get looks up a record by username in any casing.
func (d *Directory) Get(name string) (*models.Player, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.players[models.NormalizeUsername(name)]
	return p, ok
}

// PlayerInfo is the public listing entry of one identity.
type PlayerInfo struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	RoomID      int    `json:"roomId,omitempty"`
}

// List returns every known identity sorted by username.
func (d *Directory) List() []PlayerInfo {
	d.mu.Lock()
	players := make([]*models.Player, 0, len(d.players))
	for _, p := range d.players {
		players = append(players, p)
	}
	d.mu.Unlock()

	out := make([]PlayerInfo, len(players))
	for i, p := range players {
		out[i] = PlayerInfo{
			Username:    p.Username,
			DisplayName: p.DisplayName(),
			RoomID:      p.RoomID(),
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
