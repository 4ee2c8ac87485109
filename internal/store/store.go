// Package store holds the client's orchestration state. Every mutation swaps
// whole records on a private copy and commits it under one lock, so readers
// never observe a half-applied change.
package store

import (
	"sync"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
)

type State struct {
	Selection      []models.SelectedItem
	Devices        []models.Device
	SelectedDevice *models.Device
	Favorites      []models.FavoriteDevice
	Upload         *models.UploadProgress
	Receive        *models.ReceiveProgress
	Shares         []models.ShareLinkSession
	PendingShare   *models.PendingShare
	BackendRunning bool

	// Version increases with every committed change.
	Version uint64

	// session id of the last receive cancellation issued by this client
	SelfCancelled string
}

func (st State) clone() State {
	cp := st
	cp.Selection = append([]models.SelectedItem(nil), st.Selection...)
	cp.Devices = append([]models.Device(nil), st.Devices...)
	cp.Favorites = append([]models.FavoriteDevice(nil), st.Favorites...)
	cp.Shares = append([]models.ShareLinkSession(nil), st.Shares...)
	cp.Upload = st.Upload.Clone()
	if st.SelectedDevice != nil {
		dev := *st.SelectedDevice
		cp.SelectedDevice = &dev
	}
	if st.Receive != nil {
		recv := *st.Receive
		cp.Receive = &recv
	}
	if st.PendingShare != nil {
		cp.PendingShare = &models.PendingShare{
			Files: append([]models.SelectedItem(nil), st.PendingShare.Files...),
		}
	}
	return cp
}

// Listener observes committed states. It must not call Update, directly or
// through the mutation helpers.
type Listener func(State)

type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int

	notifyMu  sync.Mutex
	delivered uint64
}

func New() *Store {
	return &Store{
		listeners: make(map[int]Listener),
	}
}

// Get returns a snapshot of the current state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// Update hands fn a private copy of the state. If fn reports a change the copy
// replaces the current state and subscribers are notified. Subscribers never
// see an older version after a newer one; a snapshot overtaken by a concurrent
// commit is skipped.
func (s *Store) Update(fn func(st *State) bool) bool {
	s.mu.Lock()
	next := s.state.clone()
	if !fn(&next) {
		s.mu.Unlock()
		return false
	}
	next.Version = s.state.Version + 1
	s.state = next
	snapshot := next.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if snapshot.Version <= s.delivered {
		return true
	}
	s.delivered = snapshot.Version
	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// Subscribe registers l for change notifications until the returned func is called.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// AddItem appends item to the selection unless an equal item is already there.
func (s *Store) AddItem(item models.SelectedItem) error {
	var dup bool
	s.Update(func(st *State) bool {
		for _, existing := range st.Selection {
			if existing.Equal(item) {
				dup = true
				return false
			}
		}
		st.Selection = append(st.Selection, item)
		return true
	})

	if dup {
		return lserrors.ErrDuplicateItem
	}
	return nil
}

func (s *Store) RemoveItem(id string) bool {
	return s.Update(func(st *State) bool {
		kept := make([]models.SelectedItem, 0, len(st.Selection))
		for _, it := range st.Selection {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(st.Selection) {
			return false
		}
		st.Selection = kept
		return true
	})
}

func (s *Store) ClearSelection() {
	s.Update(func(st *State) bool {
		if len(st.Selection) == 0 {
			return false
		}
		st.Selection = nil
		return true
	})
}

func (s *Store) Selection() []models.SelectedItem {
	return s.Get().Selection
}
