package screening

import "errors"

var (
	// ErrAnalysisFailed means the scorer failed, timed out or returned an
	// unusable result. No screening was persisted; the module can be retried.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrAnalysisAbandoned means the session left the module while its
	// analysis was running. The result was discarded.
	ErrAnalysisAbandoned = errors.New("analysis abandoned")
	// ErrInvalidTransition means the operation is not allowed in the
	// session's current state.
	ErrInvalidTransition = errors.New("invalid workflow transition")
	// ErrModuleMismatch means a result was reported for a module other than
	// the one in progress.
	ErrModuleMismatch = errors.New("result does not match the module in progress")
	// ErrSessionNotFound means no session exists under the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPatientNotFound means the selected patient is not in the store.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrInvalidFilter means the list filter is neither "all" nor a risk level.
	ErrInvalidFilter = errors.New("invalid risk filter")
)
