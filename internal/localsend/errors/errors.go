package errors

import (
	"errors"
	"fmt"
)

// protocol status errors
var (
	ErrFinished        = errors.New("No file transfer needed")
	ErrInvalidBody     = errors.New("Invalid body")
	ErrRejected        = errors.New("Rejected")
	ErrInvalidPIN      = errors.New("Invalid PIN")
	ErrNotFound        = errors.New("Not found")
	ErrBlockedByOthers = errors.New("Block by another session")
	ErrUnknown         = errors.New("Unknown error")
	ErrTooManyReq      = errors.New("Too many request")
)

// orchestration errors
var (
	ErrNoTargetSelected       = errors.New("No target selected")
	ErrNoFilesSelected        = errors.New("No files selected")
	ErrAuthenticationRequired = errors.New("Authentication required")
	ErrPinRequired            = errors.New("PIN required")
	ErrConfirmFailed          = errors.New("Confirm failed")
	ErrBackendUnreachable     = errors.New("Backend unreachable")
	ErrNoShareableItems       = errors.New("No shareable items")
	ErrDuplicateItem          = errors.New("Item already selected")
	ErrUploadInProgress       = errors.New("Upload already in progress")
)

func ParseError(status int) error {
	switch status {
	case 200, 207:
		return nil
	case 204:
		return ErrFinished
	case 400:
		return ErrInvalidBody
	case 401:
		return ErrInvalidPIN
	case 403:
		return ErrRejected
	case 404:
		return ErrNotFound
	case 409:
		return ErrBlockedByOthers
	case 429:
		return ErrTooManyReq
	default:
		return ErrUnknown
	}
}

func Status(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrFinished):
		return 204
	case errors.Is(err, ErrInvalidBody):
		return 400
	case errors.Is(err, ErrInvalidPIN):
		return 401
	case errors.Is(err, ErrRejected):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrBlockedByOthers):
		return 409
	case errors.Is(err, ErrTooManyReq):
		return 429
	default:
		return 500
	}
}

// PrepareFailedError is a non-200, non-401 answer to prepare-upload.
type PrepareFailedError struct {
	Status  int
	Message string
}

func (e *PrepareFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prepare failed with status %d", e.Status)
	}
	return fmt.Sprintf("prepare failed with status %d: %s", e.Status, e.Message)
}

func (e *PrepareFailedError) Unwrap() error {
	return ParseError(e.Status)
}

// BatchFailedError is an upload-batch answer other than 200/207.
type BatchFailedError struct {
	Status  int
	Message string
	Success int
	Failed  int
}

func (e *BatchFailedError) Error() string {
	msg := fmt.Sprintf("batch upload failed with status %d (%d success, %d failed)", e.Status, e.Success, e.Failed)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *BatchFailedError) Unwrap() error {
	return ParseError(e.Status)
}

// UploadItemError is a failed single-item upload.
type UploadItemError struct {
	FileID  string
	Message string
}

func (e *UploadItemError) Error() string {
	return fmt.Sprintf("upload of %s failed: %s", e.FileID, e.Message)
}
