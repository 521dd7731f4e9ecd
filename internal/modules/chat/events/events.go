package events

import "time"

// PersistCommand asks the persistence worker to append a broadcast message to
// the room's history.
type PersistCommand struct {
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomJoined is published after a connection joined a room.
type RoomJoined struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
	Room         string `json:"room"`
	Members      int    `json:"members"`
}

// RoomLeft is published after a joined connection went away.
type RoomLeft struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
	Room         string `json:"room"`
	Members      int    `json:"members"`
}
