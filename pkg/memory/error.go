package memory

import "errors"

// ErrNotConfigured is returned when memory operations are attempted
// but no memory driver has been configured.
var ErrNotConfigured = errors.New("memory not configured")

// ErrUnknownStore is returned for a store name with no driver.
var ErrUnknownStore = errors.New("unknown memory store")
