package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireEnv skips external backend tests in short mode or when the backend
// is not configured.
func requireEnv(t *testing.T, key string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping external store test in short mode")
	}
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s not set", key)
	}
	return v
}

func TestSurrealStore(t *testing.T) {
	url := requireEnv(t, "SURREAL_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	surreal := cfg.GetSurreal()
	surreal.URL = url

	db, err := NewDB(ctx, surreal)
	require.NoError(t, err, "failed to connect to test database")
	store := NewSurrealStore(db, domain.HistoryLimit)
	require.NoError(t, store.EnsureSchema(ctx))
	t.Cleanup(func() {
		_ = Execute(context.Background(), db, "DELETE message", nil)
		store.Close()
	})

	testRepository(t, store)
}

func TestRedisStore(t *testing.T) {
	addr := requireEnv(t, "REDIS_ADDR")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	store := NewRedisStore(client, domain.HistoryLimit)
	t.Cleanup(func() { store.Close() })

	testRepository(t, store)
}

func TestRedisStore_TrimsList(t *testing.T) {
	addr := requireEnv(t, "REDIS_ADDR")
	ctx := context.Background()

	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	store := NewRedisStore(client, 2)
	defer store.Close()

	room := "trim-" + time.Now().Format("150405.000000")
	for i := 0; i < 20; i++ {
		require.NoError(t, store.SaveMessage(ctx, domain.NewMessage{RoomID: room, Username: "u", Text: "x"}))
	}
	n, err := client.LLen(ctx, roomKey(room)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2*retainFactor), n)
	client.Del(ctx, roomKey(room))
}

func TestMongoStore(t *testing.T) {
	uri := requireEnv(t, "MONGODB_URI")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := ConnectMongo(ctx, config.MongoConfig{URI: uri, DB: "espresso-chat-test"}, domain.HistoryLimit)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.coll.Drop(context.Background())
		store.Close()
	})

	testRepository(t, store)
}
