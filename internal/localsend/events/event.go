// Package events decodes the backend's push channel and reconciles each event
// against the session store.
package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/tidwall/gjson"
)

var ErrUnknownEvent = errors.New("unknown event type")

type Type string

const (
	TypeDeviceDiscovered Type = "device_discovered"
	TypeDeviceUpdated    Type = "device_updated"
	TypeConfirmRecv      Type = "confirm_recv"
	TypeConfirmDownload  Type = "confirm_download"
	TypePinRequired      Type = "pin_required"
	TypeUploadStart      Type = "upload_start"
	TypeUploadProgress   Type = "upload_progress"
	TypeUploadEnd        Type = "upload_end"
	TypeUploadCancelled  Type = "upload_cancelled"
	TypeSendProgress     Type = "send_progress"
	TypeSendFinished     Type = "send_finished"
	TypeTextReceived     Type = "text_received"
	TypeFileReceived     Type = "file_received"
	TypeInfo             Type = "info"
)

// Event is one push message. The set of implementations is closed to this package.
type Event interface {
	Type() Type
	event()
}

type DeviceDiscovered struct {
	models.Device
}

type DeviceUpdated struct {
	models.Device
}

// ConfirmRecv asks the local user to accept an incoming transfer.
type ConfirmRecv struct {
	SessionID string                      `json:"sessionId"`
	Alias     string                      `json:"alias"`
	Files     map[string]models.FileInput `json:"files"`
}

// ConfirmDownload asks the local user to let a client pull a share link.
type ConfirmDownload struct {
	SessionID string `json:"sessionId"`
	ClientKey string `json:"clientKey"`
	ClientIP  string `json:"clientIp"`
}

type PinRequired struct {
	SessionID string `json:"sessionId"`
	Alias     string `json:"alias"`
}

type UploadStart struct {
	SessionID  string `json:"sessionId"`
	TotalFiles int    `json:"totalFiles"`
}

type UploadProgress struct {
	SessionID       string `json:"sessionId"`
	CompletedCount  int    `json:"completedCount"`
	CurrentFileName string `json:"currentFileName"`
}

type UploadEnd struct {
	SessionID string `json:"sessionId"`
}

type UploadCancelled struct {
	SessionID string `json:"sessionId"`
}

// SendProgress reports one of our outgoing items finishing on the backend.
type SendProgress struct {
	SessionID string `json:"sessionId"`
	FileID    string `json:"fileId"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

const (
	ReasonCompleted = "completed"
	ReasonCancelled = "cancelled"
	ReasonRejected  = "rejected"
)

// SendFinished is the terminal event of a batch upload.
type SendFinished struct {
	SessionID    string `json:"sessionId"`
	Reason       string `json:"reason"`
	SuccessCount int    `json:"successCount"`
	FailedCount  int    `json:"failedCount"`
}

type TextReceived struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

type FileReceived struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	Path      string `json:"path"`
}

type Info struct {
	Message string `json:"message"`
}

func (DeviceDiscovered) Type() Type { return TypeDeviceDiscovered }
func (DeviceUpdated) Type() Type    { return TypeDeviceUpdated }
func (ConfirmRecv) Type() Type      { return TypeConfirmRecv }
func (ConfirmDownload) Type() Type  { return TypeConfirmDownload }
func (PinRequired) Type() Type      { return TypePinRequired }
func (UploadStart) Type() Type      { return TypeUploadStart }
func (UploadProgress) Type() Type   { return TypeUploadProgress }
func (UploadEnd) Type() Type        { return TypeUploadEnd }
func (UploadCancelled) Type() Type  { return TypeUploadCancelled }
func (SendProgress) Type() Type     { return TypeSendProgress }
func (SendFinished) Type() Type     { return TypeSendFinished }
func (TextReceived) Type() Type     { return TypeTextReceived }
func (FileReceived) Type() Type     { return TypeFileReceived }
func (Info) Type() Type             { return TypeInfo }

func (DeviceDiscovered) event() {}
func (DeviceUpdated) event()    {}
func (ConfirmRecv) event()      {}
func (ConfirmDownload) event()  {}
func (PinRequired) event()      {}
func (UploadStart) event()      {}
func (UploadProgress) event()   {}
func (UploadEnd) event()        {}
func (UploadCancelled) event()  {}
func (SendProgress) event()     {}
func (SendFinished) event()     {}
func (TextReceived) event()     {}
func (FileReceived) event()     {}
func (Info) event()             {}

// Decode parses a {"type": ..., "data": {...}} frame.
func Decode(raw []byte) (Event, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid event frame: %q", raw)
	}

	typ := Type(gjson.GetBytes(raw, "type").String())
	data := []byte(gjson.GetBytes(raw, "data").Raw)
	if len(data) == 0 {
		data = []byte("{}")
	}

	switch typ {
	case TypeDeviceDiscovered:
		return unmarshal[DeviceDiscovered](data)
	case TypeDeviceUpdated:
		return unmarshal[DeviceUpdated](data)
	case TypeConfirmRecv:
		return unmarshal[ConfirmRecv](data)
	case TypeConfirmDownload:
		return unmarshal[ConfirmDownload](data)
	case TypePinRequired:
		return unmarshal[PinRequired](data)
	case TypeUploadStart:
		return unmarshal[UploadStart](data)
	case TypeUploadProgress:
		return unmarshal[UploadProgress](data)
	case TypeUploadEnd:
		return unmarshal[UploadEnd](data)
	case TypeUploadCancelled:
		return unmarshal[UploadCancelled](data)
	case TypeSendProgress:
		return unmarshal[SendProgress](data)
	case TypeSendFinished:
		return unmarshal[SendFinished](data)
	case TypeTextReceived:
		return unmarshal[TextReceived](data)
	case TypeFileReceived:
		return unmarshal[FileReceived](data)
	case TypeInfo:
		return unmarshal[Info](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, typ)
	}
}

func unmarshal[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ev.Type(), err)
	}
	return ev, nil
}
