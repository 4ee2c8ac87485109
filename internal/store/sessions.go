package store

import (
	"github.com/0w0mewo/lsctl/internal/models"
)

// BeginUpload installs up as the active upload unless one is already running.
func (s *Store) BeginUpload(up *models.UploadProgress) bool {
	return s.Update(func(st *State) bool {
		if st.Upload != nil {
			return false
		}
		st.Upload = up.Clone()
		return true
	})
}

// ReplaceUpload swaps the active upload record if it still belongs to sessionID.
func (s *Store) ReplaceUpload(sessionID string, up *models.UploadProgress) bool {
	return s.Update(func(st *State) bool {
		if st.Upload == nil || st.Upload.SessionID != sessionID {
			return false
		}
		st.Upload = up.Clone()
		return true
	})
}

// ModifyUpload applies fn to a copy of the active upload of sessionID and commits
// it when fn reports a change.
func (s *Store) ModifyUpload(sessionID string, fn func(up *models.UploadProgress) bool) bool {
	return s.Update(func(st *State) bool {
		if st.Upload == nil || st.Upload.SessionID != sessionID {
			return false
		}
		next := st.Upload.Clone()
		if !fn(next) {
			return false
		}
		st.Upload = next
		return true
	})
}

// ClearUpload drops the active upload if it belongs to sessionID and returns the
// record that was cleared. A second call for the same session is a no-op.
func (s *Store) ClearUpload(sessionID string) (*models.UploadProgress, bool) {
	var cleared *models.UploadProgress
	ok := s.Update(func(st *State) bool {
		if st.Upload == nil || st.Upload.SessionID != sessionID {
			return false
		}
		cleared = st.Upload
		st.Upload = nil
		return true
	})
	return cleared, ok
}

func (s *Store) Upload() *models.UploadProgress {
	return s.Get().Upload
}

func (s *Store) StartReceive(recv models.ReceiveProgress) {
	s.Update(func(st *State) bool {
		st.Receive = &recv
		return true
	})
}

// ModifyReceive applies fn to the receive session only if its id matches.
func (s *Store) ModifyReceive(sessionID string, fn func(recv *models.ReceiveProgress) bool) bool {
	return s.Update(func(st *State) bool {
		if st.Receive == nil || st.Receive.SessionID != sessionID {
			return false
		}
		next := *st.Receive
		if !fn(&next) {
			return false
		}
		st.Receive = &next
		return true
	})
}

// EndReceive clears the receive session only if its id matches.
func (s *Store) EndReceive(sessionID string) bool {
	return s.Update(func(st *State) bool {
		if st.Receive == nil || st.Receive.SessionID != sessionID {
			return false
		}
		st.Receive = nil
		return true
	})
}

func (s *Store) MarkSelfCancelled(sessionID string) {
	s.Update(func(st *State) bool {
		st.SelfCancelled = sessionID
		return true
	})
}

// ConsumeSelfCancelled reports whether sessionID was cancelled by this client.
// The marker is forgotten after one comparison either way.
func (s *Store) ConsumeSelfCancelled(sessionID string) bool {
	var match bool
	s.Update(func(st *State) bool {
		if st.SelfCancelled == "" {
			return false
		}
		match = st.SelfCancelled == sessionID
		st.SelfCancelled = ""
		return true
	})
	return match
}

func (s *Store) AddShare(sess models.ShareLinkSession) {
	s.Update(func(st *State) bool {
		st.Shares = append(st.Shares, sess)
		return true
	})
}

func (s *Store) RemoveShare(sessionID string) bool {
	return s.Update(func(st *State) bool {
		kept := make([]models.ShareLinkSession, 0, len(st.Shares))
		for _, sh := range st.Shares {
			if sh.SessionID != sessionID {
				kept = append(kept, sh)
			}
		}
		if len(kept) == len(st.Shares) {
			return false
		}
		st.Shares = kept
		return true
	})
}

func (s *Store) Shares() []models.ShareLinkSession {
	return s.Get().Shares
}

func (s *Store) SetPendingShare(files []models.SelectedItem) {
	s.Update(func(st *State) bool {
		st.PendingShare = &models.PendingShare{
			Files: append([]models.SelectedItem(nil), files...),
		}
		return true
	})
}

// TakePendingShare returns and clears the staged share.
func (s *Store) TakePendingShare() (*models.PendingShare, bool) {
	var pending *models.PendingShare
	s.Update(func(st *State) bool {
		if st.PendingShare == nil {
			return false
		}
		pending = st.PendingShare
		st.PendingShare = nil
		return true
	})
	return pending, pending != nil
}
