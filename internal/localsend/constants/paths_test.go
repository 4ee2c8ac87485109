package constants

import "testing"

func TestPaths(t *testing.T) {
	paths := []struct {
		path     string
		expected string
	}{
		{PrepareUploadPath, "/api/self/v1/prepare-upload"},
		{UploadPath, "/api/self/v1/upload"},
		{UploadBatchPath, "/api/self/v1/upload-batch"},
		{CancelPath, "/api/self/v1/cancel"},
		{CreateShareSessionPath, "/api/self/v1/create-share-session"},
		{CloseShareSessionPath, "/api/self/v1/close-share-session"},
		{ConfirmDownloadPath, "/api/self/v1/confirm-download"},
		{ConfirmRecvPath, "/api/self/v1/confirm-recv"},
		{ScanCurrentPath, "/api/self/v1/scan-current"},
		{EventsPath, "/api/self/v1/events"},
	}

	for _, tt := range paths {
		if tt.path != tt.expected {
			t.Errorf("Path constant = %q; want %q", tt.path, tt.expected)
		}
	}
}

func TestFavoritePath(t *testing.T) {
	got := FavoritePath("ABCD")
	if got != "/api/self/v1/favorites/ABCD" {
		t.Errorf("FavoritePath = %q", got)
	}
}
