package store

import "errors"

// ErrNotFound names the "absent key/field" condition. No Store method
// returns it: Get and HashMultiGet report absence through a bool result.
var ErrNotFound = errors.New("store: not found")
