package resumes

import "errors"

var (
	// ErrValidation indicates bad caller input, e.g. an empty title.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates an operation on an unknown record id.
	ErrNotFound = errors.New("not found")

	// ErrImmutableField indicates an attempt to change a field that is fixed at creation.
	ErrImmutableField = errors.New("immutable field")

	// ErrEncode indicates a record could not be serialized losslessly.
	ErrEncode = errors.New("encode error")

	// ErrDecode indicates persisted text is not a well-formed record.
	ErrDecode = errors.New("decode error")

	// ErrSchema indicates required fields are missing after migration.
	ErrSchema = errors.New("schema error")

	// ErrUnsupportedSchema indicates a record written by a newer build.
	ErrUnsupportedSchema = errors.New("unsupported schema version")

	// ErrConflict indicates a duplicate id or a stale conditional write.
	ErrConflict = errors.New("conflict")
)

// ImmutableFieldError names the field a caller tried to change.
type ImmutableFieldError struct {
	Field string
}

func (e ImmutableFieldError) Error() string {
	return "immutable field: " + e.Field
}

// Is reports ErrImmutableField so callers can match with errors.Is.
func (e ImmutableFieldError) Is(target error) bool {
	return target == ErrImmutableField
}

// ErrClosed indicates an operation on a Store after Close.
var ErrClosed = errors.New("store closed")
