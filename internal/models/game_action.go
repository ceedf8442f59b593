package models

// CommandType is the closed set of inbound actions a client can send.
type CommandType string

const (
	CmdLogin       CommandType = "login"
	CmdLogout      CommandType = "logout"
	CmdJoinRoom    CommandType = "joinRoom"
	CmdToggleReady CommandType = "toggleReady"
	CmdPlayCard    CommandType = "playCard"
	CmdDrawCard    CommandType = "drawCard"
	CmdSkipTurn    CommandType = "skipTurn"
	CmdPing        CommandType = "ping"
)

// Command is one inbound client action. Fields a given type does not use are ignored.
type Command struct {
	Type        CommandType `json:"type"`
	Username    string      `json:"username,omitempty"`
	RoomID      int         `json:"roomId,omitempty"`
	CardID      string      `json:"cardId,omitempty"`
	ChosenColor CardColor   `json:"chosenColor,omitempty"`
}
