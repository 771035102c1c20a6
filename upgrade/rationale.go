package upgrade

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RationaleKind names which rule explained a decision. Exactly one applies
// to any combination of inputs; rules are checked in declaration order.
type RationaleKind int

const (
	RationaleOverbooking RationaleKind = iota
	RationaleEntryLevel
	RationaleLowProbability
	RationaleHighProbability
	RationaleMediumProbability
)

var highProbability = decimal.RequireFromString("0.7")

func (k RationaleKind) String() string {
	switch k {
	case RationaleOverbooking:
		return "overbooking"
	case RationaleEntryLevel:
		return "entry_level"
	case RationaleLowProbability:
		return "low_probability"
	case RationaleHighProbability:
		return "high_probability"
	default:
		return "medium_probability"
	}
}

// Classify picks the rationale for a decision.
func Classify(entryLevel, overbooking bool, rec Recommendation, probability decimal.Decimal) RationaleKind {
	switch {
	case overbooking:
		return RationaleOverbooking
	case entryLevel:
		return RationaleEntryLevel
	case rec == RecommendYes:
		return RationaleLowProbability
	case probability.GreaterThan(highProbability):
		return RationaleHighProbability
	default:
		return RationaleMediumProbability
	}
}

// Message renders the rationale. overbookedBy is only used for overbooking.
func (k RationaleKind) Message(overbookedBy int) string {
	switch k {
	case RationaleOverbooking:
		return fmt.Sprintf("overbooking of %d rooms", overbookedBy)
	case RationaleEntryLevel:
		return "entry-level category: not eligible for upgrade"
	case RationaleLowProbability:
		return "low sell-through probability — consider a complimentary upgrade"
	case RationaleHighProbability:
		return "high sell-through probability — do not upgrade"
	default:
		return "medium probability — evaluate availability and strategy"
	}
}
