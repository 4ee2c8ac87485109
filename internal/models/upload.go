package models

// FileInput describes one item in prepare-upload and create-share-session payloads.
type FileInput struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size,omitempty"`
	FileType string `json:"fileType,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
}

type FileInputs map[string]FileInput

// PrepareRequest is the prepare-upload body. Exactly one addressing mode is set,
// see send.BuildPrepare.
type PrepareRequest struct {
	TargetTo              string     `json:"targetTo,omitempty"`
	Files                 FileInputs `json:"files"`
	UseFolderUpload       bool       `json:"useFolderUpload,omitempty"`
	UseFastSender         bool       `json:"useFastSender,omitempty"`
	UseFastSenderIPSuffix string     `json:"useFastSenderIPSuffex,omitempty"` // backend spelling
	UseFastSenderIP       string     `json:"useFastSenderIp,omitempty"`
}

type PrepareResponse struct {
	SessionID string     `json:"sessionId"`
	Tokens    FileTokens `json:"files"`
}

type FileTokens map[string]string

type BatchFile struct {
	FileID  string `json:"fileId"`
	Token   string `json:"token"`
	FileURL string `json:"fileUrl"`
}

type BatchRequest struct {
	SessionID       string      `json:"sessionId"`
	UseFolderUpload bool        `json:"useFolderUpload,omitempty"`
	FolderPaths     []string    `json:"folderPaths,omitempty"`
	Files           []BatchFile `json:"files,omitempty"`
}

type BatchItemResult struct {
	FileID  string `json:"fileId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BatchResult struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Results []BatchItemResult `json:"results"`
}

type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusUploading ItemStatus = "uploading"
	StatusDone      ItemStatus = "done"
	StatusError     ItemStatus = "error"
)

type ItemProgress struct {
	FileID   string
	FileName string
	Kind     ItemKind
	Status   ItemStatus
	Error    string
}

type UploadPhase int

const (
	PhasePreparing UploadPhase = iota + 1
	PhaseUploading
	PhaseAwaitingEvent
)

func (p UploadPhase) String() string {
	switch p {
	case PhasePreparing:
		return "preparing"
	case PhaseUploading:
		return "uploading"
	case PhaseAwaitingEvent:
		return "awaiting-event"
	default:
		return "none"
	}
}

// UploadProgress is the sender-side session. A nil *UploadProgress means no upload.
type UploadProgress struct {
	SessionID string
	Phase     UploadPhase
	Target    string
	Total     int
	Completed int
	Items     []ItemProgress
}

func (up *UploadProgress) Clone() *UploadProgress {
	if up == nil {
		return nil
	}

	cp := *up
	cp.Items = append([]ItemProgress(nil), up.Items...)
	return &cp
}

// Counts returns how many items ended done and how many ended in error.
func (up *UploadProgress) Counts() (done int, failed int) {
	if up == nil {
		return 0, 0
	}

	for _, it := range up.Items {
		switch it.Status {
		case StatusDone:
			done++
		case StatusError:
			failed++
		}
	}
	return done, failed
}

// ReceiveProgress is the receiver-side session. A nil *ReceiveProgress means idle.
type ReceiveProgress struct {
	SessionID       string
	TotalFiles      int
	CompletedCount  int
	CurrentFileName string
}
