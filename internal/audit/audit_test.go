package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "maklarsystem/pkg/domain"
	"maklarsystem/pkg/requestcontext"
)

var (
	quiet   = slog.New(slog.NewTextHandler(io.Discard, nil))
	listing = id.ListingID(uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"))
)

type failingStore struct{ calls int }

func (f *failingStore) Append(context.Context, Event) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingStore) ListByListing(context.Context, id.ListingID) ([]Event, error) {
	return nil, errors.New("disk full")
}

func TestPublisherStampsFromContext(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(requestcontext.WithRequestID(context.Background(), "req-1"), at)

	p := NewPublisher(1, quiet)
	p.Emit(ctx, Event{Action: ActionBidPlaced, ListingID: listing})

	got := <-p.Events()
	assert.Equal(t, at, got.Timestamp)
	assert.Equal(t, "req-1", got.RequestID)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(1, quiet)
	p.Emit(context.Background(), Event{Action: ActionBidPlaced})
	p.Emit(context.Background(), Event{Action: ActionBidAccepted})

	assert.Equal(t, int64(1), p.Dropped())
	assert.Equal(t, ActionBidPlaced, (<-p.Events()).Action)
}

func TestWorkerFlushesOnShutdown(t *testing.T) {
	store := NewMemoryStore()
	p := NewPublisher(8, quiet)
	for _, a := range []Action{ActionBidPlaced, ActionBidAccepted, ActionBidCascadeRejected} {
		p.Emit(context.Background(), Event{Action: a, ListingID: listing})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(store, p.Events(), quiet).Run(ctx))

	events, err := store.ListByListing(context.Background(), listing)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ActionBidCascadeRejected, events[2].Action)
}

func TestWorkerSkipsFailedAppends(t *testing.T) {
	store := &failingStore{}
	inbox := make(chan Event, 2)
	inbox <- Event{Action: ActionBidPlaced}
	inbox <- Event{Action: ActionBidWithdrawn}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(store, inbox, quiet).Run(ctx))
	assert.Equal(t, 2, store.calls)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), Event{ListingID: listing, Amount: 1_000_000}))

	events, _ := store.ListByListing(context.Background(), listing)
	events[0].Amount = 1

	again, _ := store.ListByListing(context.Background(), listing)
	assert.Equal(t, int64(1_000_000), again[0].Amount)
}

func TestHandleListEvents(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), Event{
		Action:    ActionBidPlaced,
		ListingID: listing,
		Amount:    2_000_000,
		Status:    "aktivt",
	}))

	serve := func(events Reader, path string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		NewHandler(events, quiet).Register(r)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	t.Run("lists events", func(t *testing.T) {
		rr := serve(store, "/listings/"+listing.String()+"/audit")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"antal":1`)
		assert.Contains(t, rr.Body.String(), `"handelse":"bid_placed"`)
	})

	t.Run("empty listing", func(t *testing.T) {
		rr := serve(store, "/listings/"+uuid.NewString()+"/audit")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"handelser":[]`)
	})

	t.Run("bad listing id", func(t *testing.T) {
		rr := serve(store, "/listings/nope/audit")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		rr := serve(&failingStore{}, "/listings/"+listing.String()+"/audit")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
