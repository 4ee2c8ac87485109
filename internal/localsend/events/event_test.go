package events

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		raw   string
		check func(Event) bool
	}{
		{`{"type":"device_discovered","data":{"fingerprint":"fp","alias":"desk","port":53317}}`, func(ev Event) bool {
			d, ok := ev.(DeviceDiscovered)
			return ok && d.Fingerprint == "fp" && d.Alias == "desk" && d.Port == 53317
		}},
		{`{"type":"send_finished","data":{"sessionId":"s","reason":"rejected","successCount":2,"failedCount":1}}`, func(ev Event) bool {
			f, ok := ev.(SendFinished)
			return ok && f.SessionID == "s" && f.Reason == ReasonRejected && f.SuccessCount == 2 && f.FailedCount == 1
		}},
		{`{"type":"send_progress","data":{"sessionId":"s","fileId":"f","success":true}}`, func(ev Event) bool {
			p, ok := ev.(SendProgress)
			return ok && p.FileID == "f" && p.Success
		}},
		{`{"type":"confirm_download","data":{"sessionId":"s","clientKey":"k"}}`, func(ev Event) bool {
			c, ok := ev.(ConfirmDownload)
			return ok && c.ClientKey == "k"
		}},
		{`{"type":"upload_end"}`, func(ev Event) bool {
			e, ok := ev.(UploadEnd)
			return ok && e.SessionID == ""
		}},
		{`{"type":"info","data":{"message":"hello"}}`, func(ev Event) bool {
			i, ok := ev.(Info)
			return ok && i.Message == "hello"
		}},
	}

	for _, tt := range tests {
		ev, err := Decode([]byte(tt.raw))
		if err != nil {
			t.Errorf("Decode(%s) failed: %v", tt.raw, err)
			continue
		}
		if !tt.check(ev) {
			t.Errorf("Decode(%s) = %#v", tt.raw, ev)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"mystery","data":{}}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid frame")
	}
	if _, err := Decode([]byte(`{"type":"upload_start","data":{"totalFiles":"many"}}`)); err == nil {
		t.Error("expected error for mistyped payload")
	}
}
