package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOffsets struct {
	mu     sync.Mutex
	offset int64
	saves  []int64
}

func (m *memOffsets) Offset() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset, nil
}

func (m *memOffsets) SaveOffset(offset int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = offset
	m.saves = append(m.saves, offset)
	return nil
}

func TestPollerDispatchesAndAdvancesOffset(t *testing.T) {
	offsets := &memOffsets{offset: 7}

	var mu sync.Mutex
	var requested []int64
	var handled []int64

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req GetUpdatesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		mu.Lock()
		requested = append(requested, req.Offset)
		first := len(requested) == 1
		mu.Unlock()

		if first {
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":7,"message":{"message_id":1,"chat":{"id":1,"type":"private"},"text":"/start"}},
				{"update_id":8,"message":{"message_id":2,"chat":{"id":1,"type":"private"},"text":"/menu"}}
			]}`)
			return
		}
		cancel() // nothing left to deliver, end the run
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	})

	p := NewPoller(c, offsets, func(ctx context.Context, upd Update) {
		handled = append(handled, upd.UpdateID)
	})

	err := p.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{7, 8}, handled)
	assert.Equal(t, []int64{8, 9}, offsets.saves)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(requested), 2)
	assert.Equal(t, int64(7), requested[0])
	assert.Equal(t, int64(9), requested[1])
}

func TestPollerSurvivesTransportErrors(t *testing.T) {
	offsets := &memOffsets{}

	var mu sync.Mutex
	calls := 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		switch n {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`)
		case 2:
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":1,"message":{"message_id":1,"chat":{"id":1,"type":"private"},"text":"/start"}}]}`)
		default:
			cancel()
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		}
	})

	var handled []int64
	p := NewPoller(c, offsets, func(ctx context.Context, upd Update) {
		handled = append(handled, upd.UpdateID)
	})
	p.retryDelay = 10 * time.Millisecond

	err := p.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{1}, handled)
	assert.Equal(t, []int64{2}, offsets.saves)
}

func TestPollerWaitsForRetryAfterHint(t *testing.T) {
	offsets := &memOffsets{}

	var mu sync.Mutex
	var hits []time.Time

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, time.Now())
		first := len(hits) == 1
		mu.Unlock()

		if first {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 1","parameters":{"retry_after":1}}`)
			return
		}
		cancel()
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	})

	p := NewPoller(c, offsets, func(ctx context.Context, upd Update) {
		t.Error("no update should be dispatched")
	})
	// Keep the generic delay tiny so only the server's hint can explain a
	// one second gap between polls.
	p.retryDelay = 10 * time.Millisecond

	err := p.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(hits), 2)
	gap := hits[1].Sub(hits[0])
	assert.GreaterOrEqual(t, gap.Milliseconds(), int64(900),
		"second poll arrived after %s, before the retry_after hint elapsed", gap)
}

func TestPollerStopsOnCancelledContext(t *testing.T) {
	offsets := &memOffsets{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	})

	p := NewPoller(c, offsets, func(ctx context.Context, upd Update) {
		t.Error("no update should be dispatched after cancellation")
	})

	err := p.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, offsets.saves)
}
