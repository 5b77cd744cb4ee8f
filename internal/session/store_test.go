package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tagdesk/internal/common/logger"
	"tagdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(id string) *models.ConversationSession {
	now := time.Now().UTC()
	s := &models.ConversationSession{ID: id, CreatedAt: now, UpdatedAt: now}
	s.Append(models.RoleUser, "hello", now)
	s.Append(models.RoleAssistant, "hi, which client?", now)
	return s
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	sess := newTestSession("s-1")
	require.NoError(t, store.Put(ctx, sess))

	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Messages, 2)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour, logger.NewNoOpLogger()), mr
}

func TestRedisStore_WriteThrough(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	sess := newTestSession("s-redis")
	require.NoError(t, store.Put(ctx, sess))

	// The snapshot landed in redis with the TTL applied.
	assert.True(t, mr.Exists("intake:session:s-redis"))
	assert.Greater(t, mr.TTL("intake:session:s-redis"), time.Duration(0))

	got, err := store.Get(ctx, "s-redis")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Messages, 2)
}

func TestRedisStore_ReadThroughAfterRestart(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	sess := newTestSession("s-survivor")
	require.NoError(t, store.Put(ctx, sess))

	// A fresh store (empty memory) over the same redis simulates a restart.
	client2 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client2.Close() })
	fresh := NewRedisStore(client2, time.Hour, logger.NewNoOpLogger())

	got, err := fresh.Get(ctx, "s-survivor")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s-survivor", got.ID)
	assert.Len(t, got.Messages, 2)
}

func TestRedisStore_MissingSession(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	got, err := store.Get(ctx, "never-seen")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_SnapshotCommand(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, 30*time.Minute, logger.NewNoOpLogger())

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := &models.ConversationSession{ID: "s-mock", CreatedAt: at, UpdatedAt: at}
	sess.Append(models.RoleUser, "hello", at)

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	mock.ExpectSet("intake:session:s-mock", data, 30*time.Minute).SetVal("OK")

	require.NoError(t, store.Put(ctx, sess))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SnapshotFailureDegrades(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	mr.Close()

	// The write must still succeed against the in-memory copy.
	sess := newTestSession("s-degraded")
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "s-degraded")
	require.NoError(t, err)
	require.NotNil(t, got)
}
