package assistant

import "errors"

// ErrInvalidInput indicates a request the assistant cannot act on, e.g. no resume text.
var ErrInvalidInput = errors.New("invalid input")
