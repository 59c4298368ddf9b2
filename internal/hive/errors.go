package hive

import "errors"

// Sentinel errors surfaced by the repository and service.  The HTTP layer
// maps them to status codes; nothing in this package writes responses.
var (
	// ErrNotFound covers both "no such serial for this owner" and "no such
	// token".  The public endpoint must return it uniformly so probers cannot
	// distinguish malformed tokens from unknown ones.
	ErrNotFound = errors.New("hive not found")

	// ErrNotOwner is returned when an authenticated caller tries to mutate a
	// hive that belongs to someone else.
	ErrNotOwner = errors.New("hive belongs to another owner")

	// ErrAlreadySold rejects a second sell; silently overwriting would lose
	// the original sale date.
	ErrAlreadySold = errors.New("hive already sold")

	// ErrNotSold rejects unsell of an active hive.
	ErrNotSold = errors.New("hive is not sold")

	// ErrAllocationContention is returned after repeated duplicate-key
	// failures while inserting freshly allocated identifiers.  Retryable by
	// the client.
	ErrAllocationContention = errors.New("identifier allocation contention")
)

// ValidationError reports a rejected input field.  It is raised before any
// allocator or token logic runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }
