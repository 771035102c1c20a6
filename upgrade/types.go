// Package upgrade decides, per stay date, whether a room category can give
// away rooms as complimentary upgrades.
//
// The pipeline runs one way: production history becomes a demand
// Distribution, which is combined with on-the-books room nights, effective
// capacity and the category's rate and margin to produce a Decision per date.
// AnalyzeTrend summarizes recent booking velocity against the prior year.
package upgrade

import (
	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// RECOMMENDATION
// =============================================================================

type Recommendation string

const (
	RecommendYes Recommendation = "Yes"
	RecommendNo  Recommendation = "No"
)

// =============================================================================
// PARAMS - Per-category inputs to the decision
// =============================================================================

// Params are the category settings the decision depends on.
type Params struct {
	AverageRate decimal.Decimal
	MinMargin   decimal.Decimal
	EntryLevel  bool
}

// ParamsFor reads Params from a configured category.
func ParamsFor(c generic.RoomCategory) Params {
	return Params{
		AverageRate: c.AverageRate,
		MinMargin:   c.Margin(),
		EntryLevel:  c.EntryLevel,
	}
}

// =============================================================================
// DECISION - Output for one stay date
// =============================================================================

// Decision is the recommendation for one stay date.
type Decision struct {
	Date              generic.Date
	RoomNights        int
	Probability       decimal.Decimal
	ExpectedRevenue   decimal.Decimal
	DynamicThreshold  decimal.Decimal
	PickupDelta       int
	Recommendation    Recommendation
	Rationale         string
	RationaleKind     RationaleKind
	OccupancyPct      decimal.Decimal
	Overbooking       bool
	OverbookedBy      int
	EffectiveCapacity int
}

// Upgrade reports whether the decision is to grant upgrades.
func (d Decision) Upgrade() bool { return d.Recommendation == RecommendYes }
