package scores

import "errors"

var ErrValidation = errors.New("invalid score entry")
