package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0w0mewo/lsctl/internal/localsend/constants"
	"github.com/gorilla/websocket"
)

func TestNewStreamURL(t *testing.T) {
	tests := []struct {
		base, want string
	}{
		{"http://127.0.0.1:53318", "ws://127.0.0.1:53318" + constants.EventsPath},
		{"https://host:1/x?y=1", "wss://host:1" + constants.EventsPath},
	}
	for _, tt := range tests {
		s, err := NewStream(tt.base)
		if err != nil {
			t.Fatalf("NewStream(%q) failed: %v", tt.base, err)
		}
		if s.URL() != tt.want {
			t.Errorf("NewStream(%q).URL() = %q, want %q", tt.base, s.URL(), tt.want)
		}
	}

	if _, err := NewStream("ftp://host"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

// eventServer serves one batch of frames per connection, then closes it.
func eventServer(t *testing.T, frames ...[]string) (*httptest.Server, *int32) {
	t.Helper()

	var conns int32
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc(constants.EventsPath, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := int(atomic.AddInt32(&conns, 1)) - 1
		if n < len(frames) {
			for _, f := range frames[n] {
				conn.WriteMessage(websocket.TextMessage, []byte(f))
			}
		}
		if n < len(frames)-1 {
			return
		}
		// last connection stays open until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &conns
}

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(_ context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, ev)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamDeliversAndReconnects(t *testing.T) {
	srv, conns := eventServer(t,
		[]string{
			`{"type":"device_discovered","data":{"fingerprint":"a"}}`,
			`{"type":"mystery"}`,
			`garbage`,
		},
		[]string{
			`{"type":"upload_start","data":{"sessionId":"s","totalFiles":1}}`,
		},
	)

	var states []bool
	var statesMu sync.Mutex
	s, err := NewStream(srv.URL, WithBackoff(20*time.Millisecond), WithConnState(func(up bool) {
		statesMu.Lock()
		states = append(states, up)
		statesMu.Unlock()
	}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &collector{}
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, c.handle) }()

	waitFor(t, func() bool { return c.len() == 2 })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after cancel", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if _, ok := c.events[0].(DeviceDiscovered); !ok {
		t.Errorf("first event = %T", c.events[0])
	}
	if _, ok := c.events[1].(UploadStart); !ok {
		t.Errorf("second event = %T", c.events[1])
	}
	if atomic.LoadInt32(conns) < 2 {
		t.Errorf("expected a reconnect, got %d connections", atomic.LoadInt32(conns))
	}

	statesMu.Lock()
	defer statesMu.Unlock()
	if len(states) < 3 || !states[0] || states[1] || !states[2] {
		t.Errorf("unexpected connection states %v", states)
	}
}

func TestStreamRetriesUntilCancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	s, err := NewStream(strings.Replace(srv.URL, "http", "ws", 1), WithBackoff(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx, func(context.Context, Event) {}); err != nil {
		t.Errorf("Run should end quietly on cancel, got %v", err)
	}
}
