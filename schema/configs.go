package schema

// Granularity defines the temporal bucketing used to derive periods.
type Granularity string

// Supported temporal granularities.
const (
	Yearly     Granularity = "yearly"
	Semiannual Granularity = "semiannual"
	Quarterly  Granularity = "quarterly"
	Monthly    Granularity = "monthly"
)

// ValidGranularities enumerates accepted granularity values.
var ValidGranularities = map[Granularity]struct{}{
	Yearly:     {},
	Semiannual: {},
	Quarterly:  {},
	Monthly:    {},
}

// Quadrant is one of the four regions of the 2D score space.
// Q1 = high-x & high-y, Q2 = low-x & high-y, Q3 = low-x & low-y,
// Q4 = high-x & low-y. Reference ties classify as low.
type Quadrant string

// The four quadrants.
const (
	Q1 Quadrant = "Q1"
	Q2 Quadrant = "Q2"
	Q3 Quadrant = "Q3"
	Q4 Quadrant = "Q4"
)

// RiskRank defines the documented total order over quadrants used by the
// risk-increasing transition filter: Q3 < Q2 = Q4 < Q1.
var RiskRank = map[Quadrant]int{
	Q3: 0,
	Q2: 1,
	Q4: 1,
	Q1: 2,
}

// SpikeAxis marks which score axes moved past the spike threshold.
type SpikeAxis string

// Spike axis values.
const (
	SpikeNone SpikeAxis = "none"
	SpikeX    SpikeAxis = "X"
	SpikeY    SpikeAxis = "Y"
	SpikeXY   SpikeAxis = "XY"
)

// Priority tier values.
const (
	PriorityCritical    = 1
	PriorityInvestigate = 2
	PriorityMonitor     = 3
	PriorityLow         = 4
)

// PriorityName returns the display name for a priority tier.
func PriorityName(tier int) string {
	switch tier {
	case PriorityCritical:
		return "Critical"
	case PriorityInvestigate:
		return "Investigate"
	case PriorityMonitor:
		return "Monitor"
	default:
		return "Low"
	}
}

// OutputMode controls the rendering of result tables.
type OutputMode string

// Supported output modes.
const (
	TextOut    OutputMode = "text"
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// ValidOutputModes enumerates accepted output values.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// DatabaseBackend selects the persistence backend for the movement cache.
type DatabaseBackend string

// Supported database backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidDatabaseBackends enumerates accepted backend values.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
