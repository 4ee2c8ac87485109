package send

import (
	"context"
	"fmt"

	"github.com/0w0mewo/lsctl/internal/localsend/api"
	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/0w0mewo/lsctl/internal/utils"
)

// Backend is the part of the request layer the orchestrator drives.
type Backend interface {
	PrepareUpload(ctx context.Context, body models.PrepareRequest, pin string) (api.Result, error)
	Upload(ctx context.Context, sessionID, fileID, token string, data []byte) (api.Result, error)
	UploadBatch(ctx context.Context, body models.BatchRequest) (api.Result, error)
	Cancel(ctx context.Context, sessionID string) (api.Result, error)
}

type Mode int

const (
	ModeDevice Mode = iota
	ModeFavorite
	ModeFastIP
	ModeFastSuffix
)

// Target addresses the receiving peer.
type Target struct {
	Mode        Mode
	Fingerprint string // ModeDevice, ModeFavorite
	Address     string // ModeFastIP, ModeFastSuffix
	Alias       string
}

func ToDevice(dev models.Device) Target {
	return Target{Mode: ModeDevice, Fingerprint: dev.Fingerprint, Alias: dev.Alias}
}

func ToFavorite(fav models.FavoriteDevice) Target {
	return Target{Mode: ModeFavorite, Fingerprint: fav.Fingerprint, Alias: fav.Alias}
}

// ToAddress builds a fast-send target from a full IPv4 address or its suffix.
func ToAddress(addr string) Target {
	mode := ModeFastSuffix
	if utils.IsFullIPv4(addr) {
		mode = ModeFastIP
	}
	return Target{Mode: mode, Address: addr, Alias: addr}
}

func (t Target) String() string {
	if t.Alias != "" {
		return t.Alias
	}
	if t.Fingerprint != "" {
		return t.Fingerprint
	}
	return t.Address
}

func (t Target) validate() error {
	switch t.Mode {
	case ModeDevice, ModeFavorite:
		if t.Fingerprint == "" {
			return lserrors.ErrNoTargetSelected
		}
	case ModeFastIP:
		if !utils.IsFullIPv4(t.Address) {
			return fmt.Errorf("%w: invalid address %q", lserrors.ErrNoTargetSelected, t.Address)
		}
	case ModeFastSuffix:
		if !utils.IsIPv4Suffix(t.Address) {
			return fmt.Errorf("%w: invalid address suffix %q", lserrors.ErrNoTargetSelected, t.Address)
		}
	default:
		return lserrors.ErrNoTargetSelected
	}
	return nil
}

// BuildPrepare produces the prepare-upload payload for target and items.
// Files and folders are referenced by URL; text is declared inline and its
// bytes follow through the upload endpoint.
func BuildPrepare(target Target, items []models.SelectedItem) (models.PrepareRequest, error) {
	if err := target.validate(); err != nil {
		return models.PrepareRequest{}, err
	}
	if len(items) == 0 {
		return models.PrepareRequest{}, lserrors.ErrNoFilesSelected
	}

	req := models.PrepareRequest{
		Files: make(models.FileInputs, len(items)),
	}

	switch target.Mode {
	case ModeDevice, ModeFavorite:
		req.TargetTo = target.Fingerprint
	case ModeFastIP:
		req.UseFastSender = true
		req.UseFastSenderIP = target.Address
	case ModeFastSuffix:
		req.UseFastSender = true
		req.UseFastSenderIPSuffix = target.Address
	}

	for _, it := range items {
		req.Files[it.ID] = describe(it)
		if it.Kind == models.KindFolder {
			req.UseFolderUpload = true
		}
	}

	return req, nil
}

func describe(it models.SelectedItem) models.FileInput {
	in := models.FileInput{
		ID:       it.ID,
		FileName: it.FileName,
	}

	switch it.Kind {
	case models.KindText:
		in.Size = int64(len(it.TextContent))
		in.FileType = "text/plain"
	default:
		in.FileURL = utils.FileURL(it.Path())
	}
	return in
}

// partition splits items into text, folder and plain file buckets, keeping order.
func partition(items []models.SelectedItem) (texts, folders, files []models.SelectedItem) {
	for _, it := range items {
		switch it.Kind {
		case models.KindText:
			texts = append(texts, it)
		case models.KindFolder:
			folders = append(folders, it)
		default:
			files = append(files, it)
		}
	}
	return
}
