package core

import "github.com/priorityx/priorityx/schema"

// Classify maps a pair of scores into a quadrant relative to the supplied
// population references. The classifier is reference-agnostic: callers
// compute the reference once per period (zero for centered random effects,
// a population statistic otherwise) and pass it in, so classification stays
// a pure function with no hidden state.
//
// Boundary policy: a score exactly on its reference classifies as low, so
// an on-the-line point can never land in Q1.
func Classify(xScore, yScore, xRef, yRef float64) schema.Quadrant {
	highX := xScore > xRef
	highY := yScore > yRef

	switch {
	case highX && highY:
		return schema.Q1
	case !highX && highY:
		return schema.Q2
	case !highX && !highY:
		return schema.Q3
	default:
		return schema.Q4
	}
}
