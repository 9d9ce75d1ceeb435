package contract

import (
	"fmt"

	"github.com/priorityx/priorityx/schema"
)

// ConfigurationError indicates an invalid global setting: unknown column
// names, unparseable timestamps, or unsupported granularity/family values.
// It is fatal and never retried.
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Detail)
}

// NewConfigurationError builds a ConfigurationError with a formatted detail.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// InsufficientDataError indicates an entity, period, or transition has too
// few rows for the requested operation. Recoverable: the caller may relax
// thresholds or skip the entity while the pipeline continues.
type InsufficientDataError struct {
	Entity string
	Period schema.Period
	Detail string
}

func (e *InsufficientDataError) Error() string {
	if e.Period != "" {
		return fmt.Sprintf("insufficient data for %s in %s: %s", e.Entity, e.Period, e.Detail)
	}
	return fmt.Sprintf("insufficient data for %s: %s", e.Entity, e.Detail)
}

// AmbiguousBinSpecError indicates a numeric bin specification that is
// neither a valid edge list nor a positive integer. Fatal for that column
// only; other columns are still processed.
type AmbiguousBinSpecError struct {
	Column string
	Detail string
}

func (e *AmbiguousBinSpecError) Error() string {
	return fmt.Sprintf("ambiguous bin spec for column %s: %s", e.Column, e.Detail)
}

// ModelFitDiagnostic builds the non-fatal diagnostic recorded when a Score
// Provider fit does not converge cleanly for a period.
func ModelFitDiagnostic(period schema.Period, warnings []string) schema.Diagnostic {
	msg := "model fit did not converge"
	if len(warnings) > 0 {
		msg = fmt.Sprintf("model fit did not converge: %s", warnings[0])
	}
	return schema.Diagnostic{Period: period, Kind: "model_fit", Message: msg}
}
