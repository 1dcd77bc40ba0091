package gallery

import (
	"time"
)

// AssetStatus tracks an upload through its processing pipeline.
type AssetStatus string

const (
	AssetStatusPending    AssetStatus = "pending"
	AssetStatusProcessing AssetStatus = "processing"
	AssetStatusReady      AssetStatus = "ready"
	AssetStatusError      AssetStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusPending, AssetStatusProcessing, AssetStatusReady, AssetStatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is a legal lifecycle
// step. Errored assets may re-enter processing for a retry.
func (s AssetStatus) CanTransitionTo(next AssetStatus) bool {
	switch s {
	case AssetStatusPending:
		return next == AssetStatusProcessing
	case AssetStatusProcessing:
		return next == AssetStatusReady || next == AssetStatusError
	case AssetStatusError:
		return next == AssetStatusProcessing
	}
	return false
}

type Asset struct {
	ID           string      `json:"id" db:"id"`
	FolderID     string      `json:"folder_id" db:"folder_id"`
	Filename     string      `json:"filename" db:"filename"`
	OriginalPath string      `json:"original_path" db:"original_path"`
	PreviewPath  *string     `json:"preview_path,omitempty" db:"preview_path"`
	Checksum     string      `json:"checksum" db:"checksum"` // SHA-256, lowercase hex
	FileSize     int64       `json:"file_size" db:"file_size"`
	MimeType     string      `json:"mime_type" db:"mime_type"`
	Width        *int        `json:"width,omitempty" db:"width"`
	Height       *int        `json:"height,omitempty" db:"height"`
	Status       AssetStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// DuplicateMatch describes where previously uploaded content lives.
// Digests with no match come back with Duplicate=false.
type DuplicateMatch struct {
	Checksum  string `json:"checksum"`
	Duplicate bool   `json:"duplicate"`
	AssetID   string `json:"asset_id,omitempty"`
	FolderID  string `json:"folder_id,omitempty"`
	Filename  string `json:"filename,omitempty"`
}
