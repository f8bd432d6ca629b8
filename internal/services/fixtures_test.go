package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore/memstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/notify"
	"github.com/diftofficial/systemAplikaciaGYM/internal/repository"
)

var testLogger = zerolog.Nop()

var testNow = time.Date(2031, 5, 1, 9, 30, 0, 0, time.UTC)

func seedAccount(t *testing.T, store docstore.Store, id, email string, points int64) {
	t.Helper()
	err := store.Commit(context.Background(), []docstore.Write{
		docstore.Create(repository.UsersCollection, id, map[string]any{
			"uid":    id,
			"name":   "Member " + id,
			"email":  email,
			"role":   "user",
			"points": points,
		}),
	}, nil)
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

func seedSession(t *testing.T, store docstore.Store, id, trainerID string, capacity, price, count int64) {
	t.Helper()
	err := store.Commit(context.Background(), []docstore.Write{
		docstore.Create(repository.SessionsCollection, id, map[string]any{
			"trainerId":         trainerID,
			"dateTime":          time.Date(2031, 5, 4, 18, 0, 0, 0, time.UTC),
			"capacity":          capacity,
			"priceInPoints":     price,
			"participantsCount": count,
			"title":             "Session " + id,
		}),
	}, nil)
	if err != nil {
		t.Fatalf("seed session %s: %v", id, err)
	}
}

func pointsOf(t *testing.T, store docstore.Store, id string) int64 {
	t.Helper()
	doc, err := store.Get(context.Background(), repository.UsersCollection, id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return doc.Int("points")
}

func participantsOf(t *testing.T, store docstore.Store, id string) int64 {
	t.Helper()
	doc, err := store.Get(context.Background(), repository.SessionsCollection, id)
	if err != nil {
		t.Fatalf("get session %s: %v", id, err)
	}
	return doc.Int("participantsCount")
}

// recordingNotifier collects delivered events; wait blocks until n arrived.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	signal chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{signal: make(chan struct{}, 64)}
}

func (r *recordingNotifier) Notify(_ context.Context, event notify.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recordingNotifier) wait(t *testing.T, n int) []notify.Event {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.signal:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d notifications, got %d", n, i)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

// interferingStore runs interfere right before the first n commits reach the
// wrapped store, simulating a concurrent writer that wins the race.
type interferingStore struct {
	*memstore.Store
	remaining atomic.Int32
	interfere func()
}

func (s *interferingStore) Commit(ctx context.Context, writes []docstore.Write, preconditions []docstore.Precondition) error {
	if s.remaining.Add(-1) >= 0 {
		s.interfere()
	}
	return s.Store.Commit(ctx, writes, preconditions)
}

type failingStore struct {
	*memstore.Store
	getErr    error
	commitErr error
}

var errBackendDown = errors.New("backend down")

func (s *failingStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, collection, id)
}

func (s *failingStore) Commit(ctx context.Context, writes []docstore.Write, preconditions []docstore.Precondition) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	return s.Store.Commit(ctx, writes, preconditions)
}
