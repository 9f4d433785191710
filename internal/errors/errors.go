// Package errors defines sentinel errors shared across the report pipeline.
// The CLI maps them to exit codes; everything else is checked with errors.Is.
package errors

import "errors"

// Usage and configuration errors. They abort the run before any request is
// made and map to exit code 2.
var (
	// ErrMissingRepository means no owner/repository pair could be resolved
	// from arguments, environment, or the current git checkout.
	ErrMissingRepository = errors.New("repository owner and name are required")

	// ErrInvalidCount means the requested number of pull requests is not a
	// positive integer.
	ErrInvalidCount = errors.New("count must be a positive integer")

	// ErrInvalidConfig means the loaded configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArguments means the positional arguments could not be parsed.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Retrieval errors.
var (
	// ErrFirstPageFailed means the very first page request failed, so no
	// partial result exists. Maps to exit code 1.
	ErrFirstPageFailed = errors.New("failed to fetch the first page of pull requests")

	// ErrDiffUnavailable marks a diff request that failed. Never fatal.
	ErrDiffUnavailable = errors.New("diff not available")
)

// Upstream failure classes.
var (
	ErrNotFound       = errors.New("repository or pull request not found")
	ErrUnauthorized   = errors.New("github authentication failed")
	ErrRateLimit      = errors.New("github rate limit exceeded")
	ErrNetworkFailure = errors.New("network connection failed")
)
