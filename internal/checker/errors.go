package checker

import "errors"

// Sentinel errors for the run outcome taxonomy. The command layer maps
// them to process exit codes.
var (
	// ErrConfig marks required configuration missing or invalid at
	// startup, before any fetch is attempted.
	ErrConfig = errors.New("configuration error")

	// ErrFetch marks a failed snapshot fetch. The run ends without
	// touching persisted state; a transient feed outage must never read
	// as "now unavailable".
	ErrFetch = errors.New("fetch failed")

	// ErrNotify marks a delivery failure after a valid decision. The
	// operator must know a real availability event went uncommunicated.
	ErrNotify = errors.New("notification failed")
)

// ExitCode maps a run error to the process exit status: 0 for success or a
// benign fetch skip, 2 for configuration errors, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFetch):
		return 0
	case errors.Is(err, ErrConfig):
		return 2
	default:
		return 1
	}
}
