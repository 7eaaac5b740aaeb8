// Package constants defines the default timeouts and size limits shared by
// pkg/pool's dialer and pkg/buffer's in-memory threshold, so the two don't
// drift out of sync with independently-chosen magic numbers.
package constants

import "time"

// Connection timeouts and limits
const (
	DefaultIdleTimeout = 90 * time.Second
	DefaultConnTimeout = 10 * time.Second
	DefaultReadTimeout = 30 * time.Second
	CleanupInterval    = 30 * time.Second
)

// HTTP limits
const (
	MaxContentLength = 1024 * 1024 * 1024 * 1024 // 1TB; not enforced by pkg/body's Content-Length framing
)

// Buffer limits
const (
	DefaultBodyMemLimit = 4 * 1024 * 1024         // 4MB
	MaxRawBufferSize    = 100 * 1024 * 1024 // 100MB cap for raw buffer
)
