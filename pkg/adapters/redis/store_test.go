package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/pkg/adapters/redis"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/ports"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_RoundTripPreservesQueueState(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ctx := context.Background()

	session := domain.NewSession("rt", "Fever", "duration", "my")
	session.Answers["symptoms"] = []string{"Fever", "Cough"}
	session.SymptomQueue = []string{"fever", "cough"}
	session.SymptomIndex = 1
	session.Recommendations = []domain.Recommendation{
		{Symptom: "fever", RecommendationID: "R1", Details: []string{"Rest and fluids."}},
	}

	require.NoError(t, store.Save(ctx, "rt", session))

	loaded, err := store.Load(ctx, "rt")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever", "cough"}, loaded.SymptomQueue)
	assert.Equal(t, 1, loaded.SymptomIndex)
	require.Len(t, loaded.Recommendations, 1)
	assert.Equal(t, "R1", loaded.Recommendations[0].RecommendationID)
}

func TestRedisLocker_SerializesAccess(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "triage:session:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", 2*time.Second)
	require.NoError(t, err)

	// A second acquisition must block until the first is released.
	blocked, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, "s1", 2*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "s1", 2*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
