package topics

import (
	"github.com/nfrund/espresso/internal/modules/chat/events"
	"github.com/nfrund/espresso/internal/pubsub"
	"github.com/nfrund/espresso/internal/topicmgr"
)

// Module topics for the chat relay. Delivery to connections never goes
// through the bus; these topics carry persistence work and domain events.

var (
	// MessagePersist carries a broadcast message to the persistence worker.
	MessagePersist = pubsub.NewEvent[events.PersistCommand](topicmgr.TopicConfig{
		Name:        "chat.message.persist",
		Module:      "chat",
		Description: "Append a broadcast chat message to the room history",
		Example:     `{"roomId":"lobby","username":"Brave Blue Otter","text":"hi","timestamp":"2024-01-01T15:04:00Z"}`,
		Metadata: map[string]any{
			"consumer": "chat.Persister",
		},
	})

	// RoomJoined announces that a connection joined a room.
	RoomJoined = pubsub.NewEvent[events.RoomJoined](topicmgr.TopicConfig{
		Name:        "chat.room.joined",
		Module:      "chat",
		Description: "A connection joined a room",
		Example:     `{"connectionId":"6f1c...","username":"Brave Blue Otter","room":"lobby","members":2}`,
	})

	// RoomLeft announces that a joined connection disconnected.
	RoomLeft = pubsub.NewEvent[events.RoomLeft](topicmgr.TopicConfig{
		Name:        "chat.room.left",
		Module:      "chat",
		Description: "A joined connection left its room",
		Example:     `{"connectionId":"6f1c...","username":"Brave Blue Otter","room":"lobby","members":1}`,
	})
)
