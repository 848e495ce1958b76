package builder

import "errors"

var (
	// ErrNothingToRun is returned when the selection has no columns.
	ErrNothingToRun = errors.New("nothing to run: no columns selected")

	// ErrCancelled is returned when the user declines a risky query.
	ErrCancelled = errors.New("query cancelled")

	// ErrNoExecutor is returned by RunQuery when no Executor is configured.
	ErrNoExecutor = errors.New("no executor configured")
)

// RiskMessage is shown to the user before a risky query runs.
const RiskMessage = "The selected columns come from more than one table and no measure is selected. " +
	"The query may return every combination of their values. Run it anyway?"
