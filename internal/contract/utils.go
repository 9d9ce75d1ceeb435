package contract

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/priorityx/priorityx/schema"
)

// Color variables for console output.
var (
	CriticalColor    = color.New(color.FgRed, color.Bold)     // Tier 1, standard danger.
	InvestigateColor = color.New(color.FgMagenta, color.Bold) // Tier 2, strong distinct warning.
	MonitorColor     = color.New(color.FgYellow)              // Tier 3, standard caution, not bold.
	LowColor         = color.New(color.FgCyan)                // Tier 4, informational signal.
)

// GetPlainLabel returns the plain text label for a priority tier. This is
// the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(tier int) string {
	return schema.PriorityName(tier)
}

// GetColorLabel returns a colored tier label for console output (table).
// It uses GetPlainLabel to determine the string, then applies the color.
func GetColorLabel(tier int) string {
	text := GetPlainLabel(tier)
	switch tier {
	case schema.PriorityCritical:
		return CriticalColor.Sprint(text)
	case schema.PriorityInvestigate:
		return InvestigateColor.Sprint(text)
	case schema.PriorityMonitor:
		return MonitorColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseBoolString parses yes/no style flag values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected yes/no/true/false/1/0, got %q", s)
	}
}

// ParseColumnList splits a comma-separated column list, trimming blanks.
func ParseColumnList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var cols []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			cols = append(cols, p)
		}
	}
	return cols
}

// BinSpec describes how a numeric driver column is binned: either an
// explicit edge list or a positive quantile bin count. Exactly one of the
// two must be set.
type BinSpec struct {
	Edges     []float64
	Quantiles int
}

// ParseNumericColsSpec parses a CLI numeric column spec of the form
// "amount:0,1e6,5e6,1e7;days:4". Each entry maps a column to either a
// comma-separated edge list (two or more values) or a single integer
// quantile bin count.
func ParseNumericColsSpec(s string) (map[string]BinSpec, error) {
	specs := make(map[string]BinSpec)
	if strings.TrimSpace(s) == "" {
		return specs, nil
	}

	for entry := range strings.SplitSeq(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rest, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.TrimSpace(rest) == "" {
			return nil, NewConfigurationError("numeric-cols", "entry %q must be column:edges or column:quantiles", entry)
		}

		parts := ParseColumnList(rest)
		if len(parts) == 1 {
			n, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil, NewConfigurationError("numeric-cols", "quantile count %q for column %s is not an integer", parts[0], name)
			}
			specs[name] = BinSpec{Quantiles: n}
			continue
		}

		edges := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, NewConfigurationError("numeric-cols", "edge %q for column %s is not numeric", p, name)
			}
			edges = append(edges, v)
		}
		specs[name] = BinSpec{Edges: edges}
	}

	return specs, nil
}

// ValidateDatabaseConnectionString checks that a connection string has the
// shape the selected backend needs. SQLite and none need no connection
// string.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return NewConfigurationError("cache-db-connect", "required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return NewConfigurationError("cache-db-connect", "MySQL connection string must contain '@tcp(' for host:port specification")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return NewConfigurationError("cache-db-connect", "required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return NewConfigurationError("cache-db-connect", "PostgreSQL connection string must contain 'host=' parameter")
		}
	}
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}
