package schema

// Reason labels identify which priority clause fired. They are stable,
// machine-checkable strings so tests and downstream tooling can assert the
// exact trigger instead of parsing free text.
const (
	ReasonCriticalXYSpike     = "critical_xy_spike"
	ReasonCriticalXSpike      = "critical_x_spike"
	ReasonCriticalYSpike      = "critical_y_spike"
	ReasonCriticalVolumeSurge = "critical_volume_surge"

	ReasonInvestigateXDelta        = "investigate_x_delta"
	ReasonInvestigateYDelta        = "investigate_y_delta"
	ReasonInvestigateStrongQ1Entry = "investigate_strong_q1_entry"
	ReasonInvestigateVolumeGrowth  = "investigate_volume_growth"

	ReasonMonitorBoundary      = "monitor_boundary"
	ReasonMonitorGentleQ1Entry = "monitor_gentle_q1_entry"

	ReasonLowDefault = "low_default"
)
