package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/session"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Session)
	}
	s.data[sessionID] = sess.Clone()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.data[sessionID]; ok {
		return sess.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_UpdateSerializes(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Create(ctx, domain.NewSession(id, "CommonIntake", "language", "en")))

	var wg sync.WaitGroup
	concurrentWrites := 10

	// Each update appends one symptom; without per-id locking the
	// read-modify-write cycles would lose entries.
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(ctx context.Context, s *domain.Session) error {
				s.SymptomQueue = append(s.SymptomQueue, "fever")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, final.SymptomQueue, concurrentWrites)
}

func TestManager_UpdateRejectionDiscardsMutation(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "reject-test"

	require.NoError(t, manager.Create(ctx, domain.NewSession(id, "CommonIntake", "gender", "en")))

	_, err := manager.Update(ctx, id, func(ctx context.Context, s *domain.Session) error {
		s.CurrentQuestionID = "pregnancy"
		s.Answers["gender"] = "Female"
		return domain.NewValidationError("gender", "not a listed option")
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	// The failed update must not have leaked any mutation.
	current, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "gender", current.CurrentQuestionID)
	assert.Empty(t, current.Answers)
}

func TestManager_LoadMissing(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	_, err := manager.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
