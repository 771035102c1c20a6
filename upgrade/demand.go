package upgrade

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// DEMAND MODEL - Empirical P(demand >= v) from historical room nights
// =============================================================================

// Step is one point of the distribution.
type Step struct {
	Value       int
	Frequency   int
	Probability decimal.Decimal
}

// Distribution maps each distinct historical room-night value v to the
// fraction of historical dates that sold at least v.
//
// Probabilities are non-increasing in v and equal 1 at the smallest value.
// Only values seen in history are in the domain.
type Distribution struct {
	steps []Step // descending by Value
	total int
}

// NewDistribution builds the distribution from one observation per date.
// Empty history or negative values are InvalidInput.
func NewDistribution(history map[generic.Date]int) (*Distribution, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no historical observations", generic.ErrInvalidInput)
	}

	freq := make(map[int]int)
	for d, rn := range history {
		if rn < 0 {
			return nil, fmt.Errorf("%w: negative room nights %d on %s", generic.ErrInvalidInput, rn, d)
		}
		freq[rn]++
	}

	values := make([]int, 0, len(freq))
	for v := range freq {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	total := decimal.NewFromInt(int64(len(history)))
	steps := make([]Step, 0, len(values))
	atLeast := 0
	for _, v := range values {
		atLeast += freq[v]
		steps = append(steps, Step{
			Value:       v,
			Frequency:   freq[v],
			Probability: decimal.NewFromInt(int64(atLeast)).Div(total),
		})
	}

	return &Distribution{steps: steps, total: len(history)}, nil
}

// Probability returns P(demand >= v) for the smallest historical v >= rn,
// or zero when rn is above every historical value.
func (d *Distribution) Probability(rn int) decimal.Decimal {
	// Descending scan: keep the last value still >= rn.
	p := decimal.Zero
	for _, s := range d.steps {
		if s.Value < rn {
			break
		}
		p = s.Probability
	}
	return p
}

// Frequency returns how many historical dates sold exactly v.
func (d *Distribution) Frequency(v int) int {
	i := sort.Search(len(d.steps), func(i int) bool { return d.steps[i].Value <= v })
	if i < len(d.steps) && d.steps[i].Value == v {
		return d.steps[i].Frequency
	}
	return 0
}

// Steps returns a copy of the distribution, highest value first.
func (d *Distribution) Steps() []Step {
	out := make([]Step, len(d.steps))
	copy(out, d.steps)
	return out
}

// Observations is the number of historical dates.
func (d *Distribution) Observations() int { return d.total }

// Min is the smallest historical value. The distribution must come from
// NewDistribution; the zero Distribution panics.
func (d *Distribution) Min() int { return d.steps[len(d.steps)-1].Value }

// Max is the largest historical value. Same precondition as Min.
func (d *Distribution) Max() int { return d.steps[0].Value }

// HistoryFrom collects production records into one observation per date.
// Records without a room-nights column, or with negative room nights, are
// ignored.
func HistoryFrom(records []generic.ProductionRecord) map[generic.Date]int {
	history := make(map[generic.Date]int, len(records))
	for _, r := range records {
		if !r.Has(generic.FieldRoomNights) || r.RoomNights < 0 {
			continue
		}
		history[r.Date] = r.RoomNights
	}
	return history
}
