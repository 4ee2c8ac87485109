package models

import "time"

type CreateShareRequest struct {
	Files      FileInputs `json:"files"`
	Pin        string     `json:"pin,omitempty"`
	AutoAccept bool       `json:"autoAccept"`
}

type CreateShareResponse struct {
	SessionID   string `json:"sessionId"`
	DownloadURL string `json:"downloadUrl"`
}

// ShareLinkSession is a published download session tracked until it expires.
type ShareLinkSession struct {
	SessionID   string
	DownloadURL string
	CreatedAt   time.Time
	Files       []SelectedItem
}

// Expired reports whether the session outlived lifetime at now.
func (s ShareLinkSession) Expired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(s.CreatedAt) > lifetime
}
