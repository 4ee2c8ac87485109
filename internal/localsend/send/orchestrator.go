package send

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/localsend/pin"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/notify"
	"github.com/0w0mewo/lsctl/internal/store"
	"github.com/gofiber/fiber/v2"
)

const DefaultSafetyTimeout = 15 * time.Second

type Outcome int

const (
	// OutcomeCompleted: every item resolved locally as done.
	OutcomeCompleted Outcome = iota
	// OutcomePartial: resolved locally with at least one failed item.
	OutcomePartial
	// OutcomeAwaiting: completion comes from a push event, or already came
	// from one while the send was still running.
	OutcomeAwaiting
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomePartial:
		return "partial"
	default:
		return "awaiting"
	}
}

type Report struct {
	SessionID string
	Outcome   Outcome
	Success   int
	Failed    int
	// per-item failures, *lserrors.UploadItemError
	Errors    []error
}

type Option func(*Orchestrator)

func WithPrompter(p pin.Prompter) Option {
	return func(o *Orchestrator) {
		o.prompter = p
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

func WithSafetyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.safetyTimeout = d
		}
	}
}

// Orchestrator drives one outbound transfer at a time:
// prepare, PIN retry, text uploads, batch, then local or deferred completion.
type Orchestrator struct {
	backend       Backend
	store         *store.Store
	prompter      pin.Prompter
	notifier      notify.Notifier
	safetyTimeout time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewOrchestrator(backend Backend, st *store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:       backend,
		store:         st,
		notifier:      notify.Log{},
		safetyTimeout: DefaultSafetyTimeout,
		timers:        make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SendSelection sends the store's pending selection to target.
func (o *Orchestrator) SendSelection(ctx context.Context, target Target) (Report, error) {
	return o.Send(ctx, o.store.Selection(), target)
}

func (o *Orchestrator) Send(ctx context.Context, items []models.SelectedItem, target Target) (Report, error) {
	if target.Mode == ModeFavorite {
		dev, ok := o.store.Device(target.Fingerprint)
		if !ok {
			err := fmt.Errorf("%w: favorite %s is not online", lserrors.ErrNoTargetSelected, target)
			o.notifier.Notify(notify.Failure("Cannot send", err))
			return Report{}, err
		}
		target.Alias = dev.Alias
	}

	req, err := BuildPrepare(target, items)
	if err != nil {
		o.notifier.Notify(notify.Failure("Cannot send", err))
		return Report{}, err
	}

	progress := &models.UploadProgress{
		Phase:  models.PhasePreparing,
		Target: target.String(),
		Total:  totalFiles(items),
		Items:  make([]models.ItemProgress, len(items)),
	}
	for i, it := range items {
		progress.Items[i] = models.ItemProgress{
			FileID:   it.ID,
			FileName: it.FileName,
			Kind:     it.Kind,
			Status:   models.StatusPending,
		}
	}
	if !o.store.BeginUpload(progress) {
		return Report{}, lserrors.ErrUploadInProgress
	}

	slog.Info("Start sending", "target", target.String(), "items", len(items))

	resp, err := o.prepare(ctx, req)
	if err != nil {
		slog.Error("Fail to prepare upload", "target", target.String(), "status", lserrors.Status(err), "error", err)
		o.store.ClearUpload("")
		o.notifier.Notify(notify.Failure("Send failed", err))
		return Report{}, err
	}
	sessionID := resp.SessionID

	// bind the session and mark every item as in flight
	o.store.ModifyUpload("", func(up *models.UploadProgress) bool {
		up.SessionID = sessionID
		up.Phase = models.PhaseUploading
		for i := range up.Items {
			if _, ok := resp.Tokens[up.Items[i].FileID]; ok {
				up.Items[i].Status = models.StatusUploading
			} else {
				up.Items[i].Status = models.StatusError
				up.Items[i].Error = "not accepted by receiver"
			}
		}
		return true
	})

	texts, folders, files := partition(items)
	report := Report{SessionID: sessionID}

	for _, it := range texts {
		token, ok := resp.Tokens[it.ID]
		if !ok {
			report.Errors = append(report.Errors, &lserrors.UploadItemError{FileID: it.ID, Message: "no token"})
			continue
		}
		if err := o.uploadText(ctx, sessionID, it, token); err != nil {
			report.Errors = append(report.Errors, err)
		}
	}

	batch, skipped := buildBatch(sessionID, resp.Tokens, folders, files)
	report.Errors = append(report.Errors, skipped...)
	if batch == nil {
		return o.resolveLocally(sessionID, report)
	}

	return o.runBatch(ctx, *batch, report)
}

// prepare runs prepare-upload, retrying once with a PIN after a 401.
func (o *Orchestrator) prepare(ctx context.Context, req models.PrepareRequest) (models.PrepareResponse, error) {
	res, err := o.backend.PrepareUpload(ctx, req, "")
	if err != nil {
		return models.PrepareResponse{}, err
	}

	if res.Status == fiber.StatusUnauthorized {
		slog.Info("Receiver requires PIN")

		code, err := pin.Ask(ctx, o.prompter, "The receiver requires a PIN")
		if err != nil {
			return models.PrepareResponse{}, err
		}

		res, err = o.backend.PrepareUpload(ctx, req, code)
		if err != nil {
			return models.PrepareResponse{}, err
		}
		if res.Status == fiber.StatusUnauthorized {
			return models.PrepareResponse{}, fmt.Errorf("%w: %w", lserrors.ErrAuthenticationRequired,
				&lserrors.PrepareFailedError{Status: res.Status, Message: res.Message()})
		}
	}

	if !res.OK() {
		return models.PrepareResponse{}, &lserrors.PrepareFailedError{Status: res.Status, Message: res.Message()}
	}

	var resp models.PrepareResponse
	if err := res.Decode(&resp); err != nil {
		return models.PrepareResponse{}, &lserrors.PrepareFailedError{Status: res.Status, Message: err.Error()}
	}
	if resp.SessionID == "" {
		return models.PrepareResponse{}, &lserrors.PrepareFailedError{Status: res.Status, Message: "missing session id"}
	}

	return resp, nil
}

// uploadText sends one text item and republishes progress right after.
func (o *Orchestrator) uploadText(ctx context.Context, sessionID string, it models.SelectedItem, token string) error {
	var itemErr error

	res, err := o.backend.Upload(ctx, sessionID, it.ID, token, []byte(it.TextContent))
	switch {
	case err != nil:
		itemErr = &lserrors.UploadItemError{FileID: it.ID, Message: err.Error()}
	case !res.OK():
		msg := res.Message()
		if msg == "" {
			msg = res.Err().Error()
		}
		itemErr = &lserrors.UploadItemError{FileID: it.ID, Message: msg}
	}

	if itemErr != nil {
		slog.Error("Fail to send text", "fileId", it.ID, "session", sessionID, "error", itemErr)
	}

	o.store.ModifyUpload(sessionID, func(up *models.UploadProgress) bool {
		for i := range up.Items {
			if up.Items[i].FileID != it.ID {
				continue
			}
			if itemErr != nil {
				up.Items[i].Status = models.StatusError
				up.Items[i].Error = itemErr.Error()
				return true
			}
			if up.Items[i].Status != models.StatusDone {
				up.Items[i].Status = models.StatusDone
				if up.Completed < up.Total {
					up.Completed++
				}
			}
			return true
		}
		return false
	})

	return itemErr
}

// totalFiles counts the files a selection expands to. A folder counts as the
// files it holds.
func totalFiles(items []models.SelectedItem) int {
	n := 0
	for _, it := range items {
		if it.Kind == models.KindFolder {
			n += it.FileCount
			continue
		}
		n++
	}
	return n
}

// buildBatch collects the accepted folders and files. Items the receiver gave
// no token are returned as errors.
func buildBatch(sessionID string, tokens models.FileTokens, folders, files []models.SelectedItem) (*models.BatchRequest, []error) {
	batch := models.BatchRequest{SessionID: sessionID}
	var skipped []error

	for _, it := range folders {
		if _, ok := tokens[it.ID]; !ok {
			skipped = append(skipped, &lserrors.UploadItemError{FileID: it.ID, Message: "no token"})
			continue
		}
		batch.UseFolderUpload = true
		batch.FolderPaths = append(batch.FolderPaths, it.FolderPath)
	}

	for _, it := range files {
		token, ok := tokens[it.ID]
		if !ok {
			skipped = append(skipped, &lserrors.UploadItemError{FileID: it.ID, Message: "no token"})
			continue
		}
		batch.Files = append(batch.Files, models.BatchFile{
			FileID:  it.ID,
			Token:   token,
			FileURL: describe(it).FileURL,
		})
	}

	if len(batch.FolderPaths) == 0 && len(batch.Files) == 0 {
		return nil, skipped
	}
	return &batch, skipped
}

// resolveLocally ends a send that needed no batch, deciding from item statuses.
func (o *Orchestrator) resolveLocally(sessionID string, report Report) (Report, error) {
	cleared, ok := o.store.ClearUpload(sessionID)
	if !ok {
		// a send_finished event already resolved and reported it
		slog.Debug("Upload already resolved", "session", sessionID)
		report.Outcome = OutcomeAwaiting
		return report, nil
	}
	report.Success, report.Failed = cleared.Counts()

	if report.Failed == 0 {
		report.Outcome = OutcomeCompleted
		o.store.ClearSelection()
		o.notifier.Notify(notify.Success("Upload completed"))
		slog.Info("Done", "session", sessionID)
		return report, nil
	}

	report.Outcome = OutcomePartial
	o.notifier.Notify(notify.Partial("Upload partially failed", report.Success, report.Failed))
	slog.Warn("Upload partially failed", "session", sessionID, "success", report.Success, "failed", report.Failed)
	return report, nil
}

func (o *Orchestrator) runBatch(ctx context.Context, batch models.BatchRequest, report Report) (Report, error) {
	sessionID := batch.SessionID

	res, err := o.backend.UploadBatch(ctx, batch)
	if err != nil {
		err = fmt.Errorf("batch upload: %w", err)
		if _, ok := o.store.ClearUpload(sessionID); ok {
			o.notifier.Notify(notify.Failure("Send failed", err))
		}
		return report, err
	}

	var result models.BatchResult
	if len(res.Body) > 0 {
		if derr := res.Decode(&result); derr != nil {
			slog.Debug("Fail to decode batch result", "session", sessionID, "error", derr)
		}
	}

	if res.Status != fiber.StatusOK && res.Status != fiber.StatusMultiStatus {
		err := &lserrors.BatchFailedError{
			Status:  res.Status,
			Message: res.Message(),
			Success: result.Success,
			Failed:  result.Failed,
		}
		slog.Error("Fail to upload batch", "session", sessionID, "status", lserrors.Status(err), "error", err)
		if _, ok := o.store.ClearUpload(sessionID); ok {
			o.notifier.Notify(notify.Failure("Send failed", err))
		}
		return report, err
	}

	report.Outcome = OutcomeAwaiting
	report.Success = result.Success
	report.Failed = result.Failed

	// a terminal event may already have cleared the session
	awaiting := o.store.ModifyUpload(sessionID, func(up *models.UploadProgress) bool {
		up.Phase = models.PhaseAwaitingEvent
		return true
	})
	if awaiting {
		o.armSafetyTimeout(sessionID)
	}

	slog.Info("Batch accepted, waiting for completion", "session", sessionID, "status", res.Status)
	return report, nil
}

func (o *Orchestrator) armSafetyTimeout(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if old, ok := o.timers[sessionID]; ok {
		old.Stop()
	}
	o.timers[sessionID] = time.AfterFunc(o.safetyTimeout, func() {
		o.expire(sessionID)
	})
}

// expire force-clears a session whose terminal event never came. It only acts
// if the session is still the one it was armed for.
func (o *Orchestrator) expire(sessionID string) {
	o.mu.Lock()
	delete(o.timers, sessionID)
	o.mu.Unlock()

	if _, ok := o.store.ClearUpload(sessionID); !ok {
		return
	}

	slog.Warn("No completion event, clearing upload", "session", sessionID, "after", o.safetyTimeout)
	o.notifier.Notify(notify.Success("Transfer complete"))
}

// Cancel asks the backend to abort the active send. Completion still arrives
// through the event channel.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	up := o.store.Upload()
	if up == nil || up.SessionID == "" {
		return lserrors.ErrNotFound
	}

	res, err := o.backend.Cancel(ctx, up.SessionID)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("cancel %s: %w", up.SessionID, err)
	}

	slog.Info("Cancel requested", "session", up.SessionID)
	return nil
}

// Close stops pending safety timers.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, t := range o.timers {
		t.Stop()
		delete(o.timers, id)
	}
}

// ItemErrors filters report errors down to per-item failures.
func (r Report) ItemErrors() []*lserrors.UploadItemError {
	var out []*lserrors.UploadItemError
	for _, err := range r.Errors {
		var ie *lserrors.UploadItemError
		if errors.As(err, &ie) {
			out = append(out, ie)
		}
	}
	return out
}
