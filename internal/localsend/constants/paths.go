package constants

const apiBase = "/api/self/v1"

const (
	PrepareUploadPath      = apiBase + "/prepare-upload"
	UploadPath             = apiBase + "/upload"
	UploadBatchPath        = apiBase + "/upload-batch"
	CancelPath             = apiBase + "/cancel"
	CancelReceivePath      = apiBase + "/cancel-receive"
	CreateShareSessionPath = apiBase + "/create-share-session"
	CloseShareSessionPath  = apiBase + "/close-share-session"
	ConfirmDownloadPath    = apiBase + "/confirm-download"
	ConfirmRecvPath        = apiBase + "/confirm-recv"
	FavoritesPath          = apiBase + "/favorites"
	ScanNowPath            = apiBase + "/scan-now"
	ScanCurrentPath        = apiBase + "/scan-current"
	NetworkInfoPath        = apiBase + "/get-network-info"
	NetworkInterfacesPath  = apiBase + "/get-network-interfaces"
	GetBackendConfigPath   = apiBase + "/get-backend-config"
	SetBackendConfigPath   = apiBase + "/set-backend-config"
	NotifyShownPath        = apiBase + "/notify-shown"
	EventsPath             = apiBase + "/events"
)

// FavoritePath addresses a single favorite by fingerprint.
func FavoritePath(fingerprint string) string {
	return FavoritesPath + "/" + fingerprint
}
