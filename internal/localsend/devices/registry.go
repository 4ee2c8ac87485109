// Package devices keeps the discovered peers and the backend's favorites in
// the store, and pairs the two.
package devices

import (
	"context"
	"fmt"
	"log/slog"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/store"
)

type Backend interface {
	Favorites(ctx context.Context) ([]models.FavoriteDevice, error)
	AddFavorite(ctx context.Context, fav models.FavoriteDevice) error
	RemoveFavorite(ctx context.Context, fingerprint string) error
	ScanNow(ctx context.Context) ([]models.Device, error)
	ScanCurrent(ctx context.Context) ([]models.Device, error)
}

type Registry struct {
	backend Backend
	store   *store.Store
}

func NewRegistry(backend Backend, st *store.Store) *Registry {
	return &Registry{backend: backend, store: st}
}

// Refresh reloads favorites from the backend.
func (r *Registry) Refresh(ctx context.Context) ([]models.FavoriteDevice, error) {
	favs, err := r.backend.Favorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	r.store.SetFavorites(favs)
	return favs, nil
}

func (r *Registry) Add(ctx context.Context, dev models.Device) error {
	if dev.Fingerprint == "" {
		return lserrors.ErrNoTargetSelected
	}

	fav := models.FavoriteDevice{Fingerprint: dev.Fingerprint, Alias: dev.Alias}
	if err := r.backend.AddFavorite(ctx, fav); err != nil {
		return fmt.Errorf("add favorite %s: %w", dev.Fingerprint, err)
	}

	if _, err := r.Refresh(ctx); err != nil {
		// the add went through, keep the local list in step anyway
		slog.Warn("Fail to refresh favorites", "error", err)
		r.store.Update(func(st *store.State) bool {
			for _, f := range st.Favorites {
				if f.Fingerprint == fav.Fingerprint {
					return false
				}
			}
			st.Favorites = append(st.Favorites, fav)
			return true
		})
	}
	return nil
}

func (r *Registry) Remove(ctx context.Context, fingerprint string) error {
	if err := r.backend.RemoveFavorite(ctx, fingerprint); err != nil {
		return fmt.Errorf("remove favorite %s: %w", fingerprint, err)
	}

	r.store.Update(func(st *store.State) bool {
		kept := make([]models.FavoriteDevice, 0, len(st.Favorites))
		for _, f := range st.Favorites {
			if f.Fingerprint != fingerprint {
				kept = append(kept, f)
			}
		}
		if len(kept) == len(st.Favorites) {
			return false
		}
		st.Favorites = kept
		return true
	})
	return nil
}

// Scan replaces the device list. fresh triggers a new discovery round instead
// of reading the backend's current results.
func (r *Registry) Scan(ctx context.Context, fresh bool) ([]models.Device, error) {
	scan := r.backend.ScanCurrent
	if fresh {
		scan = r.backend.ScanNow
	}

	devs, err := scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.store.ReplaceDevices(devs)
	slog.Debug("Scan done", "devices", len(devs), "fresh", fresh)
	return devs, nil
}

// Reconcile pairs every favorite with its live device, if one is known.
func (r *Registry) Reconcile() []models.FavoriteStatus {
	st := r.store.Get()

	online := make(map[string]models.Device, len(st.Devices))
	for _, d := range st.Devices {
		online[d.Fingerprint] = d
	}

	out := make([]models.FavoriteStatus, 0, len(st.Favorites))
	for _, f := range st.Favorites {
		fs := models.FavoriteStatus{FavoriteDevice: f}
		if d, ok := online[f.Fingerprint]; ok {
			fs.Device = &d
		}
		out = append(out, fs)
	}
	return out
}

// ResolveFavorite returns the live device behind a favorite, for quick send.
func (r *Registry) ResolveFavorite(fingerprint string) (models.Device, error) {
	for _, fs := range r.Reconcile() {
		if fs.Fingerprint != fingerprint {
			continue
		}
		if !fs.Online() {
			return models.Device{}, fmt.Errorf("%w: favorite %s is offline", lserrors.ErrNoTargetSelected, fs.Alias)
		}
		return *fs.Device, nil
	}
	return models.Device{}, fmt.Errorf("%w: %s is not a favorite", lserrors.ErrNotFound, fingerprint)
}

// OnBackendState follows the backend going up or down. Going down forgets all
// devices; coming up reloads favorites.
func (r *Registry) OnBackendState(ctx context.Context, running bool) {
	if !r.store.SetBackendRunning(running) {
		return
	}

	slog.Info("Backend state changed", "running", running)
	if !running {
		return
	}

	if _, err := r.Refresh(ctx); err != nil {
		slog.Warn("Fail to refresh favorites", "error", err)
	}
}
