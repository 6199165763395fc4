package models

import "time"

// ReportExport describes a rendered report waiting to be downloaded.
type ReportExport struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportFile is a stored export opened for streaming.
type ExportFile struct {
	Key         string
	Filename    string
	ContentType string
}
