package storage

import (
	"context"
	"testing"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&SessionModel{})
	require.NoError(t, err)

	return &SQLiteAdapter{db: db}
}

func TestSaveAndListSessions(t *testing.T) {
	adapter := setupInMemoryDB(t)

	r1 := domain.ProbeResult{
		SessionID:   "s1",
		Timestamp:   time.Now().Add(-time.Hour),
		AttackerIP:  "10.0.0.1",
		ServerIP:    "10.0.0.2",
		HardTimeout: 30,
		IdleTimeout: 10,
		Category:    domain.CategoryBoth,
	}
	r2 := domain.ProbeResult{
		SessionID:   "s2",
		Timestamp:   time.Now(),
		AttackerIP:  "10.0.0.1",
		ServerIP:    "10.0.0.3",
		HardTimeout: 0,
		IdleTimeout: 5,
		Category:    domain.CategoryIdleOnly,
	}

	require.NoError(t, adapter.SaveSession(context.Background(), r1))
	require.NoError(t, adapter.SaveSession(context.Background(), r2))

	sessions, err := adapter.ListSessions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].SessionID, "newest session first")
	assert.Equal(t, domain.CategoryIdleOnly, sessions[0].Category)
}

func TestSaveSessionUpsert(t *testing.T) {
	adapter := setupInMemoryDB(t)

	r := domain.ProbeResult{SessionID: "s1", Timestamp: time.Now(), Category: domain.CategoryHardOnly, HardTimeout: 15}
	require.NoError(t, adapter.SaveSession(context.Background(), r))

	r.HardTimeout = 20
	require.NoError(t, adapter.SaveSession(context.Background(), r))

	sessions, err := adapter.ListSessions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 20, sessions[0].HardTimeout)
}

func TestListSessionsLimit(t *testing.T) {
	adapter := setupInMemoryDB(t)
	for i := 0; i < 5; i++ {
		r := domain.ProbeResult{SessionID: string(rune('a' + i)), Timestamp: time.Now().Add(time.Duration(i) * time.Second)}
		require.NoError(t, adapter.SaveSession(context.Background(), r))
	}

	sessions, err := adapter.ListSessions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
