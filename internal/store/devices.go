package store

import (
	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
)

// UpsertDevice merges dev into the device list by fingerprint and refreshes
// the selected device if it is the same peer.
func (s *Store) UpsertDevice(dev models.Device) {
	if dev.Fingerprint == "" {
		return
	}

	s.Update(func(st *State) bool {
		merged := dev
		found := false
		devices := make([]models.Device, len(st.Devices))
		for i, d := range st.Devices {
			if d.Fingerprint == dev.Fingerprint {
				merged = d.Merge(dev)
				d = merged
				found = true
			}
			devices[i] = d
		}
		if !found {
			devices = append(devices, dev)
		}
		st.Devices = devices

		if st.SelectedDevice != nil && st.SelectedDevice.Fingerprint == dev.Fingerprint {
			sel := merged
			st.SelectedDevice = &sel
		}
		return true
	})
}

// ReplaceDevices swaps the whole device list, as after a rescan.
func (s *Store) ReplaceDevices(devices []models.Device) {
	s.Update(func(st *State) bool {
		st.Devices = append([]models.Device(nil), devices...)
		if st.SelectedDevice != nil {
			fp := st.SelectedDevice.Fingerprint
			st.SelectedDevice = nil
			for _, d := range devices {
				if d.Fingerprint == fp {
					sel := d
					st.SelectedDevice = &sel
				}
			}
		}
		return true
	})
}

func (s *Store) Device(fingerprint string) (models.Device, bool) {
	for _, d := range s.Get().Devices {
		if d.Fingerprint == fingerprint {
			return d, true
		}
	}
	return models.Device{}, false
}

func (s *Store) SelectDevice(fingerprint string) error {
	dev, ok := s.Device(fingerprint)
	if !ok {
		return lserrors.ErrNoTargetSelected
	}

	s.Update(func(st *State) bool {
		st.SelectedDevice = &dev
		return true
	})
	return nil
}

func (s *Store) SetFavorites(favs []models.FavoriteDevice) {
	s.Update(func(st *State) bool {
		st.Favorites = append([]models.FavoriteDevice(nil), favs...)
		return true
	})
}

func (s *Store) SetBackendRunning(running bool) (changed bool) {
	return s.Update(func(st *State) bool {
		if st.BackendRunning == running {
			return false
		}
		st.BackendRunning = running
		if !running {
			st.Devices = nil
			st.SelectedDevice = nil
		}
		return true
	})
}
