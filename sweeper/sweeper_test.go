// sweeper/sweeper_test.go
package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"uniloans/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubStore struct {
	mu      sync.Mutex
	calls   int
	result  *db.SweepResult
	err     error
	release chan struct{} // when set, SweepOverdue blocks until closed
}

func (s *stubStore) SweepOverdue(ctx context.Context) (*db.SweepResult, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()
	if release != nil {
		<-release
	}
	return s.result, s.err
}

func (s *stubStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Broadcast(event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) BroadcastRoom(room, event string, payload any) {
	n.Broadcast(event, payload)
}

func (n *recordingNotifier) recorded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func TestRunOnceBroadcastsWhenLoansMoved(t *testing.T) {
	store := &stubStore{result: &db.SweepResult{Updated: 2, Details: []string{"a", "b"}}}
	notifier := &recordingNotifier{}
	s := New(store, notifier, zaptest.NewLogger(t), time.Minute, 0)

	s.RunOnce()

	require.Equal(t, 1, store.callCount())
	assert.Equal(t, []string{"prestamos_actualizados"}, notifier.recorded())
}

func TestRunOnceSilentWhenNothingOverdue(t *testing.T) {
	store := &stubStore{result: &db.SweepResult{}}
	notifier := &recordingNotifier{}
	s := New(store, notifier, zaptest.NewLogger(t), time.Minute, 0)

	s.RunOnce()

	assert.Empty(t, notifier.recorded())
}

func TestRunOnceSwallowsStoreErrors(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	notifier := &recordingNotifier{}
	s := New(store, notifier, zaptest.NewLogger(t), time.Minute, 0)

	s.RunOnce() // must not panic, must not broadcast
	assert.Empty(t, notifier.recorded())

	// next tick retries
	store.mu.Lock()
	store.err = nil
	store.result = &db.SweepResult{Updated: 1}
	store.mu.Unlock()
	s.RunOnce()

	assert.Equal(t, 2, store.callCount())
	assert.Equal(t, []string{"prestamos_actualizados"}, notifier.recorded())
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	release := make(chan struct{})
	store := &stubStore{result: &db.SweepResult{}, release: release}
	s := New(store, &recordingNotifier{}, zaptest.NewLogger(t), time.Minute, 0)

	done := make(chan struct{})
	go func() {
		s.RunOnce()
		close(done)
	}()

	// wait until the first run is inside the store
	require.Eventually(t, func() bool { return store.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	s.RunOnce() // overlaps: skipped, store not called again
	assert.Equal(t, 1, store.callCount())

	close(release)
	<-done

	// with the first run finished the guard is free again
	store.mu.Lock()
	store.release = nil
	store.mu.Unlock()
	s.RunOnce()
	assert.Equal(t, 2, store.callCount())
}

func TestNilCollaboratorsGetSafeDefaults(t *testing.T) {
	store := &stubStore{result: &db.SweepResult{Updated: 1}}
	s := New(store, nil, nil, 0, 0)

	s.RunOnce() // NopNotifier + nop logger, default interval
	assert.Equal(t, 1, store.callCount())
	assert.Equal(t, time.Minute, s.interval)
}
