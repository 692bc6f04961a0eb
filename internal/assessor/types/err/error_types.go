package err

import (
	"errors"
	"fmt"
)

// Assessor Configuration Error Types
var (
	JobConfigIsNil          = errors.New("job config is nil")
	NoControllersConfigured = errors.New("job config has no controllers")
	NoJobStepsConfigured    = errors.New("job config has no job steps")
	ThresholdSpecIsNil      = errors.New("threshold spec is nil")
	ConcurrencyNotPositive  = errors.New("maxConcurrency must be positive")
)

// Aggregator Error Types
var (
	DuplicateJobStepResult = errors.New("job step result already recorded for application")
)

// ThresholdConfigError reports a run-wide misconfiguration of the threshold
// spec: a component type, job step, or indicator entry that analysis
// requires is missing. It is fatal for the run, unlike remote data quality
// failures which degrade to zero.
type ThresholdConfigError struct {
	ComponentType string
	JobStep       string
	Missing       string
}

func (e *ThresholdConfigError) Error() string {

	return fmt.Sprintf("threshold spec for componentType %q, jobStep %q is missing %q", e.ComponentType, e.JobStep, e.Missing)
}

// IsThresholdConfigError reports whether err wraps a ThresholdConfigError.
func IsThresholdConfigError(err error) bool {

	var target *ThresholdConfigError
	return errors.As(err, &target)
}
