package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/0w0mewo/lsctl/internal/localsend/api"
	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/0w0mewo/lsctl/internal/store"
)

// Backend is the part of the request layer the reconciler answers through.
type Backend interface {
	ConfirmRecv(ctx context.Context, sessionID string, confirmed bool) (api.Result, error)
	ConfirmDownload(ctx context.Context, sessionID, clientKey string, confirmed bool) (api.Result, error)
	NotifyShown(ctx context.Context, sessionID, id string) (api.Result, error)
	CancelReceive(ctx context.Context, sessionID string) (api.Result, error)
}

// Decider answers accept/reject questions raised by the backend.
type Decider interface {
	AcceptReceive(ctx context.Context, ev ConfirmRecv) (bool, error)
	AcceptDownload(ctx context.Context, ev ConfirmDownload) (bool, error)
}

// Presenter shows received content. Each call returns once the user dismissed it.
type Presenter interface {
	ShowText(ctx context.Context, ev TextReceived) error
	ShowFile(ctx context.Context, ev FileReceived) error
}

type Option func(*Reconciler)

func WithDecider(d Decider) Option {
	return func(r *Reconciler) {
		r.decider = d
	}
}

func WithPresenter(p Presenter) Option {
	return func(r *Reconciler) {
		r.presenter = p
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(r *Reconciler) {
		r.notifier = n
	}
}

// Reconciler applies push events to the store. It never assumes which local
// step produced the current state.
type Reconciler struct {
	backend   Backend
	store     *store.Store
	decider   Decider
	presenter Presenter
	notifier  notify.Notifier
}

func NewReconciler(backend Backend, st *store.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		backend:  backend,
		store:    st,
		notifier: notify.Log{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply dispatches ev. Stale events are dropped without error.
func (r *Reconciler) Apply(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case DeviceDiscovered:
		r.store.UpsertDevice(e.Device)
	case DeviceUpdated:
		r.store.UpsertDevice(e.Device)
	case ConfirmRecv:
		return r.confirmRecv(ctx, e)
	case ConfirmDownload:
		return r.confirmDownload(ctx, e)
	case PinRequired:
		r.notifier.Notify(notify.Info("PIN required", e.Alias))
	case UploadStart:
		r.store.StartReceive(models.ReceiveProgress{SessionID: e.SessionID, TotalFiles: e.TotalFiles})
		slog.Info("Receiving", "session", e.SessionID, "files", e.TotalFiles)
	case UploadProgress:
		r.uploadProgress(e)
	case UploadEnd:
		if !r.store.EndReceive(e.SessionID) {
			slog.Debug("Drop stale upload_end", "session", e.SessionID)
			return nil
		}
		r.notifier.Notify(notify.Success("Files received"))
	case UploadCancelled:
		r.uploadCancelled(e)
	case SendProgress:
		r.sendProgress(e)
	case SendFinished:
		r.sendFinished(e)
	case TextReceived:
		r.present(ctx, e.SessionID, e.ID, func() error {
			if r.presenter == nil {
				r.notifier.Notify(notify.Info("Text received", e.Content))
				return nil
			}
			return r.presenter.ShowText(ctx, e)
		})
	case FileReceived:
		r.present(ctx, e.SessionID, e.ID, func() error {
			if r.presenter == nil {
				r.notifier.Notify(notify.Info("File received", e.Path))
				return nil
			}
			return r.presenter.ShowFile(ctx, e)
		})
	case Info:
		slog.Info("Backend", "message", e.Message)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return nil
}

func (r *Reconciler) confirmRecv(ctx context.Context, e ConfirmRecv) error {
	if e.SessionID == "" {
		err := fmt.Errorf("%w: confirm_recv without session id", lserrors.ErrConfirmFailed)
		r.notifier.Notify(notify.Failure("Cannot answer transfer request", err))
		return err
	}

	accept := false
	if r.decider != nil {
		ok, err := r.decider.AcceptReceive(ctx, e)
		if err != nil {
			slog.Warn("Fail to ask for confirmation, rejecting", "session", e.SessionID, "error", err)
		}
		accept = ok && err == nil
	}

	res, err := r.backend.ConfirmRecv(ctx, e.SessionID, accept)
	return r.confirmed(e.SessionID, res, err)
}

func (r *Reconciler) confirmDownload(ctx context.Context, e ConfirmDownload) error {
	if e.SessionID == "" {
		err := fmt.Errorf("%w: confirm_download without session id", lserrors.ErrConfirmFailed)
		r.notifier.Notify(notify.Failure("Cannot answer download request", err))
		return err
	}

	accept := false
	if r.decider != nil {
		ok, err := r.decider.AcceptDownload(ctx, e)
		if err != nil {
			slog.Warn("Fail to ask for confirmation, rejecting", "session", e.SessionID, "error", err)
		}
		accept = ok && err == nil
	}

	res, err := r.backend.ConfirmDownload(ctx, e.SessionID, e.ClientKey, accept)
	return r.confirmed(e.SessionID, res, err)
}

func (r *Reconciler) confirmed(sessionID string, res api.Result, err error) error {
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", lserrors.ErrConfirmFailed, err)
		slog.Error("Fail to confirm", "session", sessionID, "error", err)
		r.notifier.Notify(notify.Failure("Confirmation failed", err))
		return err
	}
	return nil
}

func (r *Reconciler) uploadProgress(e UploadProgress) {
	ok := r.store.ModifyReceive(e.SessionID, func(recv *models.ReceiveProgress) bool {
		recv.CompletedCount = e.CompletedCount
		recv.CurrentFileName = e.CurrentFileName
		return true
	})
	if !ok {
		slog.Debug("Drop stale upload_progress", "session", e.SessionID)
	}
}

func (r *Reconciler) uploadCancelled(e UploadCancelled) {
	ended := r.store.EndReceive(e.SessionID)
	if r.store.ConsumeSelfCancelled(e.SessionID) {
		slog.Debug("Cancelled by us", "session", e.SessionID)
		return
	}
	if !ended {
		slog.Debug("Drop stale upload_cancelled", "session", e.SessionID)
		return
	}
	r.notifier.Notify(notify.Warning("Transfer cancelled", "the sender cancelled the transfer"))
}

func (r *Reconciler) sendProgress(e SendProgress) {
	active := false
	ok := r.store.ModifyUpload(e.SessionID, func(up *models.UploadProgress) bool {
		active = true
		for i := range up.Items {
			it := &up.Items[i]
			if it.FileID != e.FileID {
				continue
			}
			if !e.Success {
				it.Status = models.StatusError
				it.Error = e.Error
				return true
			}
			if it.Status == models.StatusDone {
				return false
			}
			it.Status = models.StatusDone
			it.Error = ""
			up.Completed = min(up.Completed+1, up.Total)
			return true
		}

		// a file inside one of the uploaded folders
		if !e.Success || up.Completed >= up.Total {
			return false
		}
		up.Completed++
		return true
	})

	switch {
	case !active:
		slog.Debug("Drop stale send_progress", "session", e.SessionID, "fileId", e.FileID)
	case !ok && !e.Success:
		slog.Warn("File failed", "session", e.SessionID, "fileId", e.FileID, "error", e.Error)
	}
}

func (r *Reconciler) sendFinished(e SendFinished) {
	sessionID := e.SessionID
	if sessionID == "" {
		if up := r.store.Upload(); up != nil && up.Phase == models.PhaseAwaitingEvent {
			sessionID = up.SessionID
		}
	}

	if sessionID == "" {
		slog.Debug("Drop send_finished without session", "reason", e.Reason)
		return
	}
	if _, ok := r.store.ClearUpload(sessionID); !ok {
		// already resolved, usually by the safety timeout
		slog.Debug("Drop stale send_finished", "session", e.SessionID, "reason", e.Reason)
		return
	}

	switch e.Reason {
	case ReasonCompleted:
		r.store.ClearSelection()
		r.notifier.Notify(notify.Success("Upload completed"))
	case ReasonCancelled:
		r.notifier.Notify(notify.Warning("Upload cancelled", ""))
	default:
		if e.Reason != ReasonRejected {
			slog.Warn("Unknown finish reason", "session", sessionID, "reason", e.Reason)
		}
		r.notifier.Notify(notify.Partial("Upload partially failed", e.SuccessCount, e.FailedCount))
	}
}

// present shows content, then tells the backend it was shown. The second step
// is best effort.
func (r *Reconciler) present(ctx context.Context, sessionID, id string, show func() error) {
	if err := show(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Fail to present received content", "session", sessionID, "id", id, "error", err)
	}

	res, err := r.backend.NotifyShown(ctx, sessionID, id)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		slog.Warn("Fail to notify shown", "session", sessionID, "id", id, "error", err)
	}
}

// CancelReceive aborts the incoming transfer. The resulting upload_cancelled
// event is recognised as our own and raises no notice.
func (r *Reconciler) CancelReceive(ctx context.Context, sessionID string) error {
	r.store.MarkSelfCancelled(sessionID)
	r.store.EndReceive(sessionID)

	res, err := r.backend.CancelReceive(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("cancel receive %s: %w", sessionID, err)
	}

	slog.Info("Receive cancelled", "session", sessionID)
	return nil
}
