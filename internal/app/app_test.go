package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/0w0mewo/lsctl/internal/config"
)

func TestNew(t *testing.T) {
	if _, err := New(config.Config{BackendURL: "localhost"}); err == nil {
		t.Error("expected error for URL without scheme")
	}

	a, err := New(config.Config{BackendURL: "http://127.0.0.1:1", HTTPTimeout: time.Second})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Client.BaseURL() != "http://127.0.0.1:1" {
		t.Errorf("BaseURL = %q", a.Client.BaseURL())
	}
	if a.Orchestrator() == nil || a.Reconciler() == nil || a.ShareManager() == nil {
		t.Error("collaborators should be built")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNoApp) {
		t.Errorf("expected ErrNoApp, got %v", err)
	}

	a := &App{}
	got, err := FromContext(NewContext(context.Background(), a))
	if err != nil || got != a {
		t.Errorf("FromContext = %p, %v", got, err)
	}
}

func TestWaitConnected(t *testing.T) {
	ready := make(chan struct{})
	close(ready)
	if !WaitConnected(context.Background(), ready, time.Second) {
		t.Error("closed channel should report connected")
	}
	if WaitConnected(context.Background(), make(chan struct{}), 10*time.Millisecond) {
		t.Error("expected timeout")
	}
}
