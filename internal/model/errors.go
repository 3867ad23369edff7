package model

import "errors"

// Sentinel errors shared across packages. Wrap with fmt.Errorf("...: %w")
// and match with errors.Is.
var (
	// ErrInvalidQuantity means a resource's used amount would drop below
	// zero or exceed the purchased quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrUnknownResourceType means a consumption event names a resource
	// type that has no matching Resource.
	ErrUnknownResourceType = errors.New("unknown resource type")

	// ErrNotFound is returned by update operations addressed at an id that
	// no longer exists. Deletes and assignment changes treat stale ids as
	// no-ops instead.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded means an upload does not fit the remaining storage.
	ErrQuotaExceeded = errors.New("storage full")

	// ErrUploadAborted means an upload was cancelled before it was stored.
	ErrUploadAborted = errors.New("upload aborted")

	// ErrCompressionFailed means an image could not be decoded or re-encoded.
	ErrCompressionFailed = errors.New("compression failed")

	// ErrInvalidCredentials means the username or password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated means no login flag is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrValidation marks caller input rejected at the boundary.
	ErrValidation = errors.New("validation failed")
)
