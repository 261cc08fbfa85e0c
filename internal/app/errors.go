package app

import "errors"

var (
	// ErrStaleOwner indicates a session whose owning account no longer
	// resolves in the favorites store. The HTTP layer must destroy the
	// session before reporting the failure.
	ErrStaleOwner = errors.New("stale session: owner does not resolve")

	// ErrNoContent indicates the book page has nothing to display: no
	// persisted favorite and no transient catalog result.
	ErrNoContent = errors.New("no book to display")

	// ErrCatalogUnavailable wraps failures talking to the external catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
