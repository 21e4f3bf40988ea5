package checkpoint

import "errors"

// Failure taxonomy for storage operations. Callers classify with errors.Is;
// wrapped errors carry the detail.
//
// ErrPathNotFound and ErrPermissionDenied are live-resolution failures and
// occur only when registering a project from a path. Lookups by hash never
// touch the recorded path, so they can fail only with ErrNotFound,
// ErrCorruptEntry, or ErrIOFailure. ErrStorageRootInaccessible is the one
// fatal enumeration error: everything else is handled per entry.
var (
	// ErrPathNotFound reports that a path to register does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrPermissionDenied reports that a path to register cannot be accessed.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound reports that no record exists for a hash.
	ErrNotFound = errors.New("project not found")

	// ErrCorruptEntry reports a record that exists but does not parse or
	// validate. Recoverable: enumeration skips it, single-entry loads
	// surface it to the caller.
	ErrCorruptEntry = errors.New("corrupt metadata entry")

	// ErrIOFailure reports a read or write fault on one file.
	ErrIOFailure = errors.New("storage i/o failure")

	// ErrStorageRootInaccessible reports that the storage root itself cannot
	// be opened. The only fatal condition during enumeration.
	ErrStorageRootInaccessible = errors.New("storage root inaccessible")
)
