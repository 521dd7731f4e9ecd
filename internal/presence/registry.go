package presence

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/nfrund/espresso/internal/domain"
)

// RoomSummary is a point-in-time view of one non-empty room.
type RoomSummary struct {
	Room    string   `json:"room"`
	Members int      `json:"members"`
	Users   []string `json:"users"`
}

// Registry is the in-memory table of live chat users keyed by connection ID.
// It performs no I/O and never fails. Room membership is derived from the
// stored users, so an empty room simply has no entries.
type Registry struct {
	mu     sync.RWMutex
	users  map[string]domain.User // connectionID -> user
	rooms  map[string][]string    // room -> connectionIDs in join order
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]domain.User),
		rooms:  make(map[string][]string),
		logger: slog.Default().With("component", "presence"),
	}
}

// Join stores a user for the connection. An existing entry for the same
// connection is replaced.
func (r *Registry) Join(connectionID, username, room string) domain.User {
	user := domain.User{
		ConnectionID: connectionID,
		Username:     username,
		Room:         room,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.users[connectionID]; ok {
		r.logger.Debug("Replacing existing user for connection",
			"connection_id", connectionID,
			"previous_room", prev.Room)
		r.removeFromRoomUnsafe(prev.Room, connectionID)
	}

	r.users[connectionID] = user
	r.rooms[room] = append(r.rooms[room], connectionID)
	return user
}

// Get returns the user registered for the connection, if any.
func (r *Registry) Get(connectionID string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[connectionID]
	return user, ok
}

// Leave removes and returns the user for the connection. Calling it for an
// unknown or already removed connection is a no-op that returns false.
func (r *Registry) Leave(connectionID string) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[connectionID]
	if !ok {
		return domain.User{}, false
	}
	delete(r.users, connectionID)
	r.removeFromRoomUnsafe(user.Room, connectionID)
	return user, true
}

// ListByRoom returns the current members of a room in join order. The result
// is never nil.
func (r *Registry) ListByRoom(room string) []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.rooms[room]
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, r.users[id])
	}
	return users
}

// Rooms summarises every non-empty room, sorted by room name.
func (r *Registry) Rooms() []RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(r.rooms))
	for room, ids := range r.rooms {
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			names = append(names, r.users[id].Username)
		}
		summaries = append(summaries, RoomSummary{Room: room, Members: len(ids), Users: names})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Room < summaries[j].Room
	})
	return summaries
}

// Count returns the number of registered users across all rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// ResetAll drops every user. Intended for tests.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]domain.User)
	r.rooms = make(map[string][]string)
}

// removeFromRoomUnsafe must be called with the write lock held.
func (r *Registry) removeFromRoomUnsafe(room, connectionID string) {
	ids := r.rooms[room]
	for i, id := range ids {
		if id == connectionID {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.rooms, room)
		return
	}
	r.rooms[room] = ids
}
