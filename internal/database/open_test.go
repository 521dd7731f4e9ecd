package database

import (
	"context"
	"testing"

	"github.com/nfrund/espresso/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    any
		wantErr error
	}{
		{
			name: "memory",
			cfg:  &config.Config{StoreDriver: config.DriverMemory, HistoryLimit: 50},
			want: &MemoryStore{},
		},
		{
			name: "badger",
			cfg:  &config.Config{StoreDriver: config.DriverBadger, HistoryLimit: 50, BadgerPath: t.TempDir()},
			want: &BadgerStore{},
		},
		{
			name:    "unknown",
			cfg:     &config.Config{StoreDriver: "cassandra"},
			wantErr: ErrUnknownDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, closer, err := Open(context.Background(), tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, repo)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, repo)
			assert.NoError(t, closer.Close())
		})
	}
}
