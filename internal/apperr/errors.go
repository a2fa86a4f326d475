package apperr

import "errors"

var (
	// ErrNotFound marks a lookup miss: neither a confirmed remote note nor a
	// local draft exists for the requested page.
	ErrNotFound = errors.New("not found")
	// ErrRemoteUnavailable marks a transport-level failure talking to the
	// ledger indexer, as opposed to a clean "not found".
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrConflict marks an If-Match checksum mismatch on a draft save.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks rejected page field values (e.g. a malformed slug).
	ErrValidation = errors.New("invalid field value")
)
