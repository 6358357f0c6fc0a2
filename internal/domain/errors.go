package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested item does not exist upstream
	ErrNotFound = errors.New("item not found on server")

	// ErrServerUnreachable indicates the music server cannot be reached
	ErrServerUnreachable = errors.New("music server is unreachable")

	// ErrAuthFailed indicates the server rejected the credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotCacheable indicates a cache mutation was attempted with no
	// cache store configured. A caller bug, never retried.
	ErrNotCacheable = errors.New("operation requires a cache store")

	// ErrNotConfigured indicates no server connection has been set up
	ErrNotConfigured = errors.New("server connection is not configured")
)
