package presence

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_JoinAndGet(t *testing.T) {
	r := NewRegistry()

	user := r.Join("c1", "Brave Blue Otter", "lobby")
	assert.Equal(t, domain.User{ConnectionID: "c1", Username: "Brave Blue Otter", Room: "lobby"}, user)

	got, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ListByRoomKeepsJoinOrder(t *testing.T) {
	r := NewRegistry()
	r.Join("c1", "A", "lobby")
	r.Join("c2", "B", "other")
	r.Join("c3", "C", "lobby")

	users := r.ListByRoom("lobby")
	require.Len(t, users, 2)
	assert.Equal(t, "A", users[0].Username)
	assert.Equal(t, "C", users[1].Username)
}

func TestRegistry_EmptyRoomIsEmptyNotNil(t *testing.T) {
	r := NewRegistry()

	users := r.ListByRoom("nowhere")
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Join("c1", "A", "lobby")

	user, ok := r.Leave("c1")
	require.True(t, ok)
	assert.Equal(t, "A", user.Username)

	_, ok = r.Leave("c1")
	assert.False(t, ok)
	_, ok = r.Leave("never-joined")
	assert.False(t, ok)

	assert.Empty(t, r.ListByRoom("lobby"))
	assert.Empty(t, r.Rooms())
}

func TestRegistry_JoinOverwritesSameConnection(t *testing.T) {
	r := NewRegistry()
	r.Join("c1", "A", "lobby")
	r.Join("c1", "A", "kitchen")

	assert.Empty(t, r.ListByRoom("lobby"))
	assert.Len(t, r.ListByRoom("kitchen"), 1)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_ListByRoomReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Join("c1", "A", "lobby")

	users := r.ListByRoom("lobby")
	users[0].Username = "mutated"

	got, _ := r.Get("c1")
	assert.Equal(t, "A", got.Username)
}

func TestRegistry_RoomsAndReset(t *testing.T) {
	r := NewRegistry()
	r.Join("c1", "A", "zeta")
	r.Join("c2", "B", "alpha")
	r.Join("c3", "C", "alpha")

	rooms := r.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, RoomSummary{Room: "alpha", Members: 2, Users: []string{"B", "C"}}, rooms[0])
	assert.Equal(t, "zeta", rooms[1].Room)
	assert.Equal(t, 3, r.Count())

	r.ResetAll()
	assert.Zero(t, r.Count())
	assert.Empty(t, r.Rooms())
}

// TestRegistry_MembershipMatchesModel applies a random sequence of joins and
// leaves and checks every room against a simple reference model.
func TestRegistry_MembershipMatchesModel(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	r := NewRegistry()
	model := make(map[string]string) // connectionID -> room
	roomNames := []string{"a", "b", "c"}

	for step := 0; step < 2000; step++ {
		conn := fmt.Sprintf("c%d", rng.IntN(40))
		if rng.IntN(2) == 0 {
			if _, joined := model[conn]; joined {
				continue
			}
			room := roomNames[rng.IntN(len(roomNames))]
			r.Join(conn, "user-"+conn, room)
			model[conn] = room
		} else {
			_, ok := r.Leave(conn)
			_, inModel := model[conn]
			require.Equal(t, inModel, ok, "step %d", step)
			delete(model, conn)
		}

		for _, room := range roomNames {
			want := make(map[string]bool)
			for c, rm := range model {
				if rm == room {
					want[c] = true
				}
			}
			got := r.ListByRoom(room)
			require.Len(t, got, len(want), "step %d room %s", step, room)
			for _, u := range got {
				require.True(t, want[u.ConnectionID], "step %d: unexpected %s in %s", step, u.ConnectionID, room)
			}
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			r.Join(id, id, "lobby")
			r.ListByRoom("lobby")
			if i%2 == 0 {
				r.Leave(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.ListByRoom("lobby"), 25)
}
