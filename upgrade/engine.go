/*
engine.go - Upgrade decision engine

PURPOSE:
  Combines the demand distribution, on-the-books room nights, effective
  capacity and category settings into one Decision per stay date.

DECISION RULES (per date):
  1. p = Probability(rn)            smallest historical value >= rn, else 0
  2. expected  = p * rate
  3. threshold = rate * p * margin
  4. overbooking = rn > capacity
  5. entry-level or overbooking -> No
     otherwise Yes iff expected < threshold (strict, ties are No)
  6. rationale: overbooking, entry-level, low, high (p > 0.7), medium
  7. pickup delta = 7-day pickup - prior-year 7-day pickup (informational)
  8. occupancy = rn / capacity * 100, 0 when capacity is 0

FAILURE SEMANTICS:
  Dates are independent. A date whose capacity lookup fails, or whose OTB
  count is negative, is recorded in Result.Skipped and the run continues.
  Missing history or missing OTB aborts with ErrDataUnavailable.

SEE ALSO:
  - demand.go: Distribution
  - capacity.go: CapacityFunc, CapacityResolver
  - advisor.go: loads inputs from the store and calls Run
*/
package upgrade

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

var hundred = decimal.NewFromInt(100)

// Input is everything known about one stay date.
type Input struct {
	Date              generic.Date
	RoomNights        int
	EffectiveCapacity int
	Pickup            *generic.PickupRecord
}

// Engine computes decisions. The zero value is ready to use.
type Engine struct{}

// Decide applies the decision rules to a single date. Pure.
func (Engine) Decide(dist *Distribution, params Params, in Input) Decision {
	rn := in.RoomNights
	capacity := in.EffectiveCapacity

	probability := dist.Probability(rn)
	expected := probability.Mul(params.AverageRate)
	threshold := params.AverageRate.Mul(probability).Mul(params.MinMargin)

	overbooking := rn > capacity

	rec := RecommendNo
	if !params.EntryLevel && !overbooking && expected.LessThan(threshold) {
		rec = RecommendYes
	}

	overbookedBy := 0
	if overbooking {
		overbookedBy = rn - capacity
	}
	kind := Classify(params.EntryLevel, overbooking, rec, probability)

	pickupDelta := 0
	if in.Pickup != nil {
		pickupDelta = in.Pickup.Delta()
	}

	occupancy := decimal.Zero
	if capacity > 0 {
		occupancy = decimal.NewFromInt(int64(rn)).Mul(hundred).Div(decimal.NewFromInt(int64(capacity))).Round(2)
	}

	return Decision{
		Date:              in.Date,
		RoomNights:        rn,
		Probability:       probability,
		ExpectedRevenue:   expected,
		DynamicThreshold:  threshold,
		PickupDelta:       pickupDelta,
		Recommendation:    rec,
		Rationale:         kind.Message(overbookedBy),
		RationaleKind:     kind,
		OccupancyPct:      occupancy,
		Overbooking:       overbooking,
		OverbookedBy:      overbookedBy,
		EffectiveCapacity: capacity,
	}
}

// =============================================================================
// BATCH RUN
// =============================================================================

// Request is the input to a run over many dates.
type Request struct {
	History  map[generic.Date]int
	OTB      map[generic.Date]int
	Pickup   map[generic.Date]generic.PickupRecord
	Params   Params
	Capacity CapacityFunc
}

// Result holds decisions for every OTB date that could be computed,
// ordered by date, plus the dates that were skipped.
type Result struct {
	Distribution *Distribution
	Decisions    []Decision
	Skipped      []*generic.DateError
}

// Counts returns how many decisions were Yes and No.
func (r *Result) Counts() (yes, no int) {
	for _, d := range r.Decisions {
		if d.Upgrade() {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}

// Run decides every OTB date. Dates present only in history are not reported.
func (e Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.History) == 0 {
		return nil, fmt.Errorf("%w: no historical production loaded", generic.ErrDataUnavailable)
	}
	if len(req.OTB) == 0 {
		return nil, fmt.Errorf("%w: no on-the-books data loaded", generic.ErrDataUnavailable)
	}

	dist, err := NewDistribution(req.History)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity == nil {
		capacity = FixedCapacity(0)
	}

	dates := make([]generic.Date, 0, len(req.OTB))
	for d := range req.OTB {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	result := &Result{Distribution: dist, Decisions: make([]Decision, 0, len(dates))}
	for _, date := range dates {
		rn := req.OTB[date]
		if rn < 0 {
			result.Skipped = append(result.Skipped, &generic.DateError{
				Date: date,
				Err:  fmt.Errorf("%w: negative room nights %d", generic.ErrInvalidInput, rn),
			})
			continue
		}

		rooms, err := capacity(ctx, date)
		if err != nil {
			result.Skipped = append(result.Skipped, &generic.DateError{Date: date, Err: err})
			continue
		}

		in := Input{Date: date, RoomNights: rn, EffectiveCapacity: rooms}
		if p, ok := req.Pickup[date]; ok {
			in.Pickup = &p
		}
		result.Decisions = append(result.Decisions, e.Decide(dist, req.Params, in))
	}
	return result, nil
}
