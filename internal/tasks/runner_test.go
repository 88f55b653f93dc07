package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexryan/leadscout/internal/logging"
	"github.com/alexryan/leadscout/internal/metrics"
)

// memoryStore records task transitions in memory.
type memoryStore struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*row
	order []uuid.UUID
}

type row struct {
	kind    string
	payload []byte
	status  string
	result  []byte
	errMsg  string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[uuid.UUID]*row)}
}

func (s *memoryStore) CreateTask(_ context.Context, id uuid.UUID, kind string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = &row{kind: kind, payload: payload, status: "pending"}
	s.order = append(s.order, id)
	return nil
}

func (s *memoryStore) MarkTaskRunning(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id].status = "running"
	return nil
}

func (s *memoryStore) CompleteTask(_ context.Context, id uuid.UUID, result []byte, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.rows[id]
	r.result = result
	r.errMsg = errMsg
	if errMsg != "" {
		r.status = "failed"
	} else {
		r.status = "completed"
	}
	return nil
}

func (s *memoryStore) get(id uuid.UUID) row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.rows[id]
}

func newTestRunner(store Store, workers, queueSize int) *Runner {
	return NewRunner(store, logging.NewNop(), metrics.New(), workers, queueSize)
}

func waitForStatus(t *testing.T, store *memoryStore, id uuid.UUID, want string) row {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r := store.get(id); r.status == want {
			return r
		}
		time.Sleep(5 * time.Millisecond)
	}
	r := store.get(id)
	t.Fatalf("task never reached status %q, stuck at %q (error %q)", want, r.status, r.errMsg)
	return r
}

func TestRunnerExecutesTask(t *testing.T) {
	store := newMemoryStore()
	runner := newTestRunner(store, 2, 8)
	runner.Register("echo", func(_ context.Context, payload []byte) (any, error) {
		var in map[string]string
		require.NoError(t, json.Unmarshal(payload, &in))
		return map[string]string{"echoed": in["value"]}, nil
	})
	runner.Start(context.Background())
	defer runner.Shutdown(context.Background())

	id, err := runner.Enqueue(context.Background(), "echo", map[string]string{"value": "hello"})
	require.NoError(t, err)

	r := waitForStatus(t, store, id, "completed")
	assert.JSONEq(t, `{"echoed": "hello"}`, string(r.result))
	assert.Empty(t, r.errMsg)
}

func TestRunnerRecordsFailureWithoutRetry(t *testing.T) {
	store := newMemoryStore()
	attempts := 0
	runner := newTestRunner(store, 1, 8)
	runner.Register("flaky", func(context.Context, []byte) (any, error) {
		attempts++
		return nil, errors.New("provider exploded")
	})
	runner.Start(context.Background())
	defer runner.Shutdown(context.Background())

	id, err := runner.Enqueue(context.Background(), "flaky", nil)
	require.NoError(t, err)

	r := waitForStatus(t, store, id, "failed")
	assert.Equal(t, "provider exploded", r.errMsg)
	assert.Equal(t, 1, attempts, "failed tasks are not retried")
}

func TestRunnerRejectsUnknownKind(t *testing.T) {
	runner := newTestRunner(newMemoryStore(), 1, 8)
	runner.Start(context.Background())
	defer runner.Shutdown(context.Background())

	_, err := runner.Enqueue(context.Background(), "nope", nil)
	assert.ErrorContains(t, err, "unknown task kind")
}

func TestRunnerQueueFull(t *testing.T) {
	store := newMemoryStore()
	runner := newTestRunner(store, 1, 1)
	release := make(chan struct{})
	runner.Register("slow", func(context.Context, []byte) (any, error) {
		<-release
		return nil, nil
	})
	runner.Start(context.Background())
	defer func() {
		close(release)
		runner.Shutdown(context.Background())
	}()

	// First fills the worker, second fills the queue, third is rejected.
	_, err := runner.Enqueue(context.Background(), "slow", nil)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = runner.Enqueue(context.Background(), "slow", nil)
	require.NoError(t, err)

	id3priorLen := len(store.order)
	_, err = runner.Enqueue(context.Background(), "slow", nil)
	assert.ErrorContains(t, err, "queue full")

	store.mu.Lock()
	rejected := store.rows[store.order[id3priorLen]]
	store.mu.Unlock()
	assert.Equal(t, "failed", rejected.status, "rejected task is persisted as failed")
}

func TestRunnerShutdownDrains(t *testing.T) {
	store := newMemoryStore()
	runner := newTestRunner(store, 1, 8)
	runner.Register("work", func(context.Context, []byte) (any, error) {
		time.Sleep(10 * time.Millisecond)
		return "done", nil
	})
	runner.Start(context.Background())

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := runner.Enqueue(context.Background(), "work", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, runner.Shutdown(context.Background()))
	for _, id := range ids {
		assert.Equal(t, "completed", store.get(id).status)
	}

	_, err := runner.Enqueue(context.Background(), "work", nil)
	assert.Error(t, err, "no intake after shutdown")
}
