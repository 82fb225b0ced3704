package host

import (
	"errors"
	"fmt"
)

// ErrDirectory is the base of every error returned by the host.
var ErrDirectory = errors.New("capability directory error")

// Sentinel errors for directory operations. All of them wrap ErrDirectory.
var (
	ErrToolNotFound   = fmt.Errorf("%w: tool not found", ErrDirectory)
	ErrServerNotFound = fmt.Errorf("%w: no available server", ErrDirectory)
	ErrRegistration   = fmt.Errorf("%w: invalid registration", ErrDirectory)
	ErrValidation     = fmt.Errorf("%w: schema validation failed", ErrDirectory)
	ErrConfiguration  = fmt.Errorf("%w: invalid configuration", ErrDirectory)

	// The following are reserved for transports built on top of the directory.
	ErrRateLimitExceeded = fmt.Errorf("%w: rate limit exceeded", ErrDirectory)
	ErrTimeout           = fmt.Errorf("%w: timeout", ErrDirectory)
	ErrAuthentication    = fmt.Errorf("%w: authentication failed", ErrDirectory)
)

// wrapInternal marks an unexpected failure as a directory error while keeping the cause.
func wrapInternal(err error) error {
	if err == nil || errors.Is(err, ErrDirectory) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDirectory, err)
}
