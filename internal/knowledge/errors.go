package knowledge

import "errors"

// ErrNotFound indicates the requested source does not exist.
var ErrNotFound = errors.New("source not found")
