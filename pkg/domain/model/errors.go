package model

import "errors"

// ErrNotFound is wrapped by repository backends when a record does not exist
var ErrNotFound = errors.New("not found")
