package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// noEvent asserts no event of kind is queued right now.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			return
		}
	}
}

func drain(ch <-chan *Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// sequenceCodes returns the given codes in order, then numbered fallbacks.
func sequenceCodes(codes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		i++
		if i <= len(codes) {
			return codes[i-1]
		}
		return fmt.Sprintf("ROOM%d", i)
	}
}

type recordedMissions struct {
	mu        sync.Mutex
	summaries []Summary
}

func (r *recordedMissions) RecordMission(_ context.Context, s Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
	return nil
}

func (r *recordedMissions) all() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Summary(nil), r.summaries...)
}

func newTestHub(clock *fakeClock, missions MissionRecorder, codes ...string) *Hub {
	return NewHub(HubConfig{
		NewCode: sequenceCodes(codes...),
		Now:     clock.Now,
	}, missions, nil)
}

func connect(h *Hub, id, name string) *Client {
	c := NewClient(id, name)
	h.RegisterClient(c)
	return c
}
