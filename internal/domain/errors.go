package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Handlers use this to translate domain failures without type-switching
// on every concrete error.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors for use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Gallery-specific sentinels. Services wrap these with context via
// fmt.Errorf("...: %w", err); handlers map them to status codes.
var (
	// ErrInvalidName rejects folder/event names that are empty or too long.
	ErrInvalidName = errors.New("invalid name")

	// ErrParentNotFound means the referenced parent folder does not exist
	// or belongs to a different event.
	ErrParentNotFound = errors.New("parent folder not found")

	// ErrDepthExceeded means the operation would push a folder past the
	// maximum nesting depth.
	ErrDepthExceeded = errors.New("maximum folder depth exceeded")

	// ErrCircularReference means a move would make a folder its own
	// ancestor.
	ErrCircularReference = errors.New("circular folder reference")

	// ErrEventNotFound means the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrFolderNotFound means the referenced folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrAssetNotFound means the referenced asset does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEmptyQuery rejects blank or whitespace-only search queries.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrEmptyContent rejects checksum computation over zero bytes.
	ErrEmptyContent = errors.New("content is empty")

	// ErrChecksumFailed wraps read failures during checksum computation.
	ErrChecksumFailed = errors.New("checksum computation failed")

	// ErrInvalidShareToken is the uniform failure for share-token lookups.
	// Unknown tokens and unpublished folders are indistinguishable to
	// callers so tokens cannot be probed.
	ErrInvalidShareToken = errors.New("invalid or expired share token")

	// ErrInvalidTransition rejects illegal asset status changes.
	ErrInvalidTransition = errors.New("invalid asset status transition")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (event, folder, asset)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// FolderNotEmptyError is returned when a delete with the reject
// disposition hits a folder that still has children or assets. The
// counts let clients show what is blocking the delete.
type FolderNotEmptyError struct {
	FolderID     string
	ChildFolders int
	Assets       int
}

func (e *FolderNotEmptyError) Error() string {
	return fmt.Sprintf("folder is not empty: %d subfolders, %d photos", e.ChildFolders, e.Assets)
}

func (e *FolderNotEmptyError) StatusCode() int {
	return http.StatusConflict
}

func (e *FolderNotEmptyError) Is(target error) bool {
	return target == ErrConflict
}

// DuplicateChecksumError is returned when registering content whose
// checksum already exists. It points at the surviving asset so callers
// can link to it instead of re-uploading.
type DuplicateChecksumError struct {
	Checksum        string
	ExistingAssetID string
	FolderID        string
}

func (e *DuplicateChecksumError) Error() string {
	return fmt.Sprintf("content already exists with checksum %s", e.Checksum)
}

func (e *DuplicateChecksumError) StatusCode() int {
	return http.StatusConflict
}

func (e *DuplicateChecksumError) Is(target error) bool {
	return target == ErrConflict
}
