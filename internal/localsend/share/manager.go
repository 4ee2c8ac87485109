// Package share publishes pull-able download links and retires them once they
// outlive their lifetime.
package share

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/0w0mewo/lsctl/internal/localsend/api"
	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/0w0mewo/lsctl/internal/store"
	"github.com/0w0mewo/lsctl/internal/utils"
)

const (
	DefaultLifetime      = time.Hour
	DefaultSweepInterval = time.Second
)

type Backend interface {
	CreateShareSession(ctx context.Context, body models.CreateShareRequest) (api.Result, error)
	CloseShareSession(ctx context.Context, sessionID string) (api.Result, error)
	Ping(ctx context.Context) error
}

type Option func(*Manager)

func WithLifetime(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithMaterializer(mat Materializer) Option {
	return func(m *Manager) {
		m.materializer = mat
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

type Manager struct {
	backend      Backend
	store        *store.Store
	materializer Materializer
	notifier     notify.Notifier
	lifetime     time.Duration
	interval     time.Duration
	now          func() time.Time

	mu    sync.Mutex
	temps map[string][]string // session id -> materialized text files
}

func NewManager(backend Backend, st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		backend:      backend,
		store:        st,
		materializer: TempMaterializer{},
		notifier:     notify.Log{},
		lifetime:     DefaultLifetime,
		interval:     DefaultSweepInterval,
		now:          time.Now,
		temps:        make(map[string][]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create publishes items as a share link.
func (m *Manager) Create(ctx context.Context, items []models.SelectedItem, pin string, autoAccept bool) (models.ShareLinkSession, error) {
	sess, err := m.create(ctx, items, pin, autoAccept)
	if err != nil {
		m.notifier.Notify(notify.Failure("Cannot create share link", err))
		return models.ShareLinkSession{}, err
	}

	m.notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Title: "Share link created", Message: sess.DownloadURL})
	return sess, nil
}

func (m *Manager) create(ctx context.Context, items []models.SelectedItem, pin string, autoAccept bool) (models.ShareLinkSession, error) {
	if len(items) == 0 {
		return models.ShareLinkSession{}, lserrors.ErrNoShareableItems
	}
	if err := m.backend.Ping(ctx); err != nil {
		return models.ShareLinkSession{}, err
	}

	files, temps, err := m.describe(items)
	if err != nil {
		return models.ShareLinkSession{}, err
	}

	res, err := m.backend.CreateShareSession(ctx, models.CreateShareRequest{
		Files:      files,
		Pin:        pin,
		AutoAccept: autoAccept,
	})
	if err == nil {
		err = res.Err()
	}

	var resp models.CreateShareResponse
	if err == nil {
		err = res.Decode(&resp)
	}
	if err == nil && resp.SessionID == "" {
		err = fmt.Errorf("%w: missing session id", lserrors.ErrInvalidBody)
	}
	if err != nil {
		m.materializer.Release(temps...)
		return models.ShareLinkSession{}, fmt.Errorf("create share session: %w", err)
	}

	sess := models.ShareLinkSession{
		SessionID:   resp.SessionID,
		DownloadURL: resp.DownloadURL,
		CreatedAt:   m.now(),
		Files:       append([]models.SelectedItem(nil), items...),
	}
	m.store.AddShare(sess)

	if len(temps) > 0 {
		m.mu.Lock()
		m.temps[sess.SessionID] = temps
		m.mu.Unlock()
	}

	slog.Info("Share link created", "session", sess.SessionID, "url", sess.DownloadURL, "files", len(files))
	return sess, nil
}

// describe maps items to the files map, materializing text first.
func (m *Manager) describe(items []models.SelectedItem) (models.FileInputs, []string, error) {
	files := make(models.FileInputs, len(items))
	var temps []string

	for _, it := range items {
		in := models.FileInput{ID: it.ID, FileName: it.FileName}

		switch it.Kind {
		case models.KindText:
			fpath, err := m.materializer.Materialize(it)
			if err != nil {
				m.materializer.Release(temps...)
				return nil, nil, fmt.Errorf("materialize %s: %w", it.FileName, err)
			}
			temps = append(temps, fpath)
			in.Size = int64(len(it.TextContent))
			in.FileType = "text/plain"
			in.FileURL = utils.FileURL(fpath)
		default:
			in.FileURL = utils.FileURL(it.Path())
		}

		files[it.ID] = in
	}

	return files, temps, nil
}

// Close revokes a share link. The local record goes away even when the
// backend refuses, so closing twice is harmless.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	res, err := m.backend.CloseShareSession(ctx, sessionID)
	if err == nil {
		err = res.Err()
	}

	m.forget(sessionID)

	if err != nil {
		slog.Warn("Fail to close share session", "session", sessionID, "error", err)
		return fmt.Errorf("close share session %s: %w", sessionID, err)
	}

	slog.Info("Share link closed", "session", sessionID)
	return nil
}

func (m *Manager) forget(sessionID string) bool {
	m.mu.Lock()
	temps := m.temps[sessionID]
	delete(m.temps, sessionID)
	m.mu.Unlock()

	m.materializer.Release(temps...)
	return m.store.RemoveShare(sessionID)
}

// Sweep retires every session older than the lifetime at now and returns their ids.
func (m *Manager) Sweep(ctx context.Context, now time.Time) []string {
	var expired []string

	for _, sess := range m.store.Shares() {
		if !sess.Expired(now, m.lifetime) {
			continue
		}

		// best effort, the session is unusable either way
		if _, err := m.backend.CloseShareSession(ctx, sess.SessionID); err != nil {
			slog.Debug("Fail to close expired share session", "session", sess.SessionID, "error", err)
		}

		if m.forget(sess.SessionID) {
			expired = append(expired, sess.SessionID)
			slog.Info("Share link expired", "session", sess.SessionID)
			m.notifier.Notify(notify.Warning("Share link expired", sess.DownloadURL))
		}
	}

	return expired
}

// Run sweeps on a fixed interval until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx, m.now())
		}
	}
}

// Stage keeps items as the pending share until Commit.
func (m *Manager) Stage(items []models.SelectedItem) error {
	if len(items) == 0 {
		return lserrors.ErrNoShareableItems
	}
	m.store.SetPendingShare(items)
	return nil
}

// Commit publishes the pending share. On failure the items stay staged.
func (m *Manager) Commit(ctx context.Context, pin string, autoAccept bool) (models.ShareLinkSession, error) {
	pending, ok := m.store.TakePendingShare()
	if !ok || len(pending.Files) == 0 {
		err := lserrors.ErrNoShareableItems
		m.notifier.Notify(notify.Failure("Cannot create share link", err))
		return models.ShareLinkSession{}, err
	}

	sess, err := m.Create(ctx, pending.Files, pin, autoAccept)
	if err != nil {
		m.store.SetPendingShare(pending.Files)
		return models.ShareLinkSession{}, err
	}
	return sess, nil
}

// CloseAll revokes every tracked share link, as on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, sess := range m.store.Shares() {
		m.Close(ctx, sess.SessionID)
	}
}
