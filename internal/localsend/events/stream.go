package events

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/0w0mewo/lsctl/internal/localsend/constants"
	"github.com/gorilla/websocket"
)

const (
	defaultBackoff = 2 * time.Second

	// keep idle connections through proxies alive
	pingInterval = 30 * time.Second

	writeTimeout = 10 * time.Second
)

// Handler receives every decoded event, in arrival order.
type Handler func(ctx context.Context, ev Event)

type StreamOption func(*Stream)

// WithBackoff sets the delay between reconnect attempts.
func WithBackoff(d time.Duration) StreamOption {
	return func(s *Stream) {
		if d > 0 {
			s.backoff = d
		}
	}
}

func WithStreamInsecureTLS(insecure bool) StreamOption {
	return func(s *Stream) {
		if insecure {
			s.dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}
}

// WithConnState is called with true after each successful dial and with false
// when a live connection drops.
func WithConnState(fn func(connected bool)) StreamOption {
	return func(s *Stream) {
		s.onState = fn
	}
}

// Stream is the single subscription to the backend's push channel.
type Stream struct {
	url     string
	dialer  *websocket.Dialer
	backoff time.Duration
	onState func(bool)
}

// NewStream derives the websocket address from the backend's http(s) base URL.
func NewStream(baseURL string, opts ...StreamOption) (*Stream, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("invalid backend URL scheme %q", u.Scheme)
	}
	u.Path = constants.EventsPath
	u.RawQuery = ""

	dialer := *websocket.DefaultDialer
	s := &Stream{
		url:     u.String(),
		dialer:  &dialer,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Stream) URL() string {
	return s.url
}

// Run reads events until ctx is done, reconnecting after each failure.
func (s *Stream) Run(ctx context.Context, h Handler) error {
	for {
		err := s.runOnce(ctx, h)
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("Event stream disconnected", "url", s.url, "error", err, "retry", s.backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.backoff):
		}
	}
}

func (s *Stream) runOnce(ctx context.Context, h Handler) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close()

	slog.Debug("Connected to event stream", "url", s.url)
	s.setState(true)
	defer s.setState(false)

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(ctx, conn, done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("event stream read: %w", err)
		}

		ev, err := Decode(msg)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				slog.Debug("Skip event", "error", err)
			} else {
				slog.Warn("Failed to parse event", "error", err, "msg", string(msg))
			}
			continue
		}

		h(ctx, ev)
	}
}

// keepAlive pings the backend and unblocks the reader once ctx is done.
func (s *Stream) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				slog.Warn("Failed to send ping", "error", err)
				return
			}
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
			conn.Close()
			return
		case <-done:
			return
		}
	}
}

func (s *Stream) setState(connected bool) {
	if s.onState != nil {
		s.onState(connected)
	}
}
