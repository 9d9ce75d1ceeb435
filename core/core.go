// Package core has core logic for panel building, scoring, movement
// tracking, transition extraction, priority classification, and driver
// analysis.
package core

import (
	"context"
	"strings"
	"time"

	"github.com/priorityx/priorityx/core/algo"
	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/internal/iocache"
	"github.com/priorityx/priorityx/internal/loader"
	"github.com/priorityx/priorityx/internal/outwriter"
	"github.com/priorityx/priorityx/internal/scorer"
	"github.com/priorityx/priorityx/schema"
)

// ExecutorFunc defines the function signature for executing different
// pipeline modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteMatrix builds the filtered panel over the whole configured window,
// obtains one fit, and prints each entity's latest quadrant position.
// It serves as the main entry point for the 'matrix' mode.
func ExecuteMatrix(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	ranked, err := GetMatrixResults(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintMatrixResults(ranked, cfg, duration)
}

// GetMatrixResults computes the ranked single-window priority matrix.
func GetMatrixResults(ctx context.Context, cfg *contract.Config) ([]schema.QuadrantResult, error) {
	events, err := loadEvents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	panel, err := BuildPanel(events, panelOptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if len(panel) == 0 {
		return nil, &contract.InsufficientDataError{Detail: "no panel rows survived filtering"}
	}

	provider := scorer.New()
	fit, err := provider.Fit(ctx, panel, fitOptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if !fit.Status.Converged {
		return nil, contract.NewConfigurationError("fit", "model did not converge: %s", strings.Join(fit.Status.Warnings, "; "))
	}

	results := latestQuadrants(fit.Points)
	return algo.RankMatrix(results, cfg.ResultLimit), nil
}

// ExecuteMovement runs the full movement tracking pipeline and prints each
// entity's trajectory. It serves as the main entry point for the 'movement'
// mode.
func ExecuteMovement(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	records, meta, err := GetMovementResults(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintMovementResults(records, meta, cfg, duration)
}

// GetMovementResults computes per-entity trajectories with run metadata.
func GetMovementResults(ctx context.Context, cfg *contract.Config) ([]schema.MovementRecord, *schema.RunMeta, error) {
	events, err := loadEvents(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return trackWithCache(ctx, cfg, events)
}

// ExecuteTransitions runs movement tracking, extracts quadrant transitions,
// enriches them with priorities, and prints the ranked result. It serves as
// the main entry point for the 'transitions' mode.
func ExecuteTransitions(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	ranked, meta, err := GetTransitionResults(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintTransitionResults(ranked, meta, cfg, duration)
}

// GetTransitionResults computes ranked, priority-enriched transitions.
func GetTransitionResults(ctx context.Context, cfg *contract.Config) ([]schema.TransitionRecord, *schema.RunMeta, error) {
	records, meta, err := GetMovementResults(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	transitions := ExtractTransitions(records, cfg.RiskIncreasing)
	EnrichPriorities(transitions, priorityOptionsFromConfig(cfg))
	return algo.RankTransitions(transitions, cfg.ResultLimit), meta, nil
}

// ExecuteDrivers explains one transition by attributing its count delta to
// categorical and numeric drivers of the raw events. It serves as the main
// entry point for the 'drivers' mode.
func ExecuteDrivers(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	analysis, err := GetDriverResults(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintDriverResults(analysis, cfg, duration)
}

// GetDriverResults computes the driver analysis for the configured
// transition.
func GetDriverResults(ctx context.Context, cfg *contract.Config) (*schema.DriverAnalysis, error) {
	if cfg.Entity == "" {
		return nil, contract.NewConfigurationError("entity", "entity is required for driver analysis")
	}
	if cfg.PeriodFrom == "" || cfg.PeriodTo == "" {
		return nil, contract.NewConfigurationError("from", "both transition periods are required for driver analysis")
	}

	events, err := loadEvents(ctx, cfg)
	if err != nil {
		return nil, err
	}
	records, _, err := trackWithCache(ctx, cfg, events)
	if err != nil {
		return nil, err
	}

	return AnalyzeDrivers(records, events, driverOptionsFromConfig(cfg))
}

// trackWithCache runs TrackMovement behind the persistent movement cache.
func trackWithCache(ctx context.Context, cfg *contract.Config, events []schema.Event) ([]schema.MovementRecord, *schema.RunMeta, error) {
	provider := scorer.New()
	return cachedTrackMovement(ctx, cfg, events, trackOptionsFromConfig(cfg), provider, iocache.Manager)
}

// loadEvents reads the configured input file into raw events.
func loadEvents(ctx context.Context, cfg *contract.Config) ([]schema.Event, error) {
	source := loader.NewFileSource()
	return source.Load(ctx, cfg)
}

// latestQuadrants keeps each entity's chronologically last scored point and
// classifies it against centered references.
func latestQuadrants(points []schema.ScoredPoint) []schema.QuadrantResult {
	latest := make(map[string]schema.ScoredPoint)
	for _, pt := range points {
		prev, ok := latest[pt.Entity]
		if !ok || schema.ComparePeriods(prev.Period, pt.Period) < 0 {
			latest[pt.Entity] = pt
		}
	}

	results := make([]schema.QuadrantResult, 0, len(latest))
	for _, pt := range latest {
		results = append(results, schema.QuadrantResult{
			Entity:   pt.Entity,
			XScore:   pt.XScore,
			YScore:   pt.YScore,
			Count:    pt.Count,
			Quadrant: Classify(pt.XScore, pt.YScore, 0, 0),
		})
	}
	return results
}

// panelOptionsFromConfig maps the validated config onto panel options.
func panelOptionsFromConfig(cfg *contract.Config) PanelOptions {
	return PanelOptions{
		Granularity:     cfg.Granularity,
		MinObservations: cfg.MinObservations,
		MinTotalCount:   cfg.MinTotalCount,
		DeclineWindow:   cfg.DeclineWindow,
		MinDate:         cfg.MinDate,
		MaxDate:         cfg.MaxDate,
		XMetricCol:      cfg.XMetricCol,
		YMetricCol:      cfg.YMetricCol,
	}
}

// trackOptionsFromConfig maps the validated config onto tracking options.
func trackOptionsFromConfig(cfg *contract.Config) TrackOptions {
	return TrackOptions{
		Granularity:   cfg.Granularity,
		MinTotalCount: cfg.MinTotalCount,
		Cumulative:    cfg.Cumulative,
		Workers:       cfg.Workers,
		Fit:           fitOptionsFromConfig(cfg),
	}
}

// fitOptionsFromConfig maps the validated config onto fit options.
func fitOptionsFromConfig(cfg *contract.Config) schema.FitOptions {
	return schema.FitOptions{
		XEffect: cfg.XEffect,
		YEffect: cfg.YEffect,
		Family:  cfg.Family,
		Seed:    cfg.Seed,
	}
}

// priorityOptionsFromConfig maps the validated config onto classifier
// margins around centered references.
func priorityOptionsFromConfig(cfg *contract.Config) PriorityOptions {
	return PriorityOptions{
		StrongMargin:   cfg.StrongMargin,
		BoundaryMargin: cfg.BoundaryMargin,
	}
}

// driverOptionsFromConfig maps the validated config onto driver options.
func driverOptionsFromConfig(cfg *contract.Config) DriverOptions {
	return DriverOptions{
		Entity:          cfg.Entity,
		PeriodFrom:      cfg.PeriodFrom,
		PeriodTo:        cfg.PeriodTo,
		SubcategoryCols: cfg.SubcategoryCols,
		NumericCols:     cfg.NumericCols,
		TopN:            cfg.TopN,
		MinDelta:        cfg.MinDelta,
		Priority:        priorityOptionsFromConfig(cfg),
	}
}
