package music

import "errors"

// Sentinel errors for the library domain. Callers match them with errors.Is
// after any number of fmt.Errorf("%w") wraps.
var (
	// ErrNotFound is returned when a source file or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a required field is empty or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned for operations on the default playlist that
	// would remove or reassign it.
	ErrForbidden = errors.New("forbidden")

	// ErrUnreadable is returned when a file is not a valid audio container.
	ErrUnreadable = errors.New("unreadable audio file")
)
