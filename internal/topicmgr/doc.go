// Package topicmgr keeps the catalogue of message bus topics used by the chat
// server. Topics are defined once at package level and registered with a
// Manager so operators can list them and publishers cannot drift from the
// names subscribers listen on.
//
// Usage:
//
//	var MessagePersist = topicmgr.DefineModule(topicmgr.TopicConfig{
//		Name:        "chat.message.persist",
//		Module:      "chat",
//		Description: "A delivered chat message that must be appended to room history",
//	})
//
//	topicmgr.Default().MustRegister(MessagePersist)
package topicmgr
