// Trade rates and batch trading.
package economy

import (
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

// RatePolicy holds the exchange constants. A rate of n means n offered units
// make one batch.
type RatePolicy struct {
	Default     int // No port in reach
	GenericPort int // Port without specialization, any resource
	Specialized int // Port specialized in the offered resource
}

// DefaultRatePolicy returns the classic 4:1 / 3:1 / 2:1 rates.
func DefaultRatePolicy() RatePolicy {
	return RatePolicy{Default: 4, GenericPort: 3, Specialized: 2}
}

// RateTable is the exchange rate per resource.
type RateTable [world.NumResources]int

// Rate returns the rate for r.
func (t RateTable) Rate(r world.Resource) int {
	return t[r]
}

// PortInfo describes one port a civilization owns.
type PortInfo struct {
	Specialization *world.Resource
}

// Rates computes the most favorable (lowest) rate per resource across ports.
func Rates(policy RatePolicy, ports []PortInfo) RateTable {
	var t RateTable
	for _, r := range world.AllResources {
		t[r] = policy.Default
	}
	for _, p := range ports {
		for _, r := range world.AllResources {
			rate := policy.GenericPort
			if p.Specialization != nil {
				if *p.Specialization != r {
					continue
				}
				rate = policy.Specialized
			}
			if rate > 0 && rate < t[r] {
				t[r] = rate
			}
		}
	}
	return t
}

// batchScale is a common multiple of every rate we allow (1 through 6),
// so batch counts can be compared exactly in integers.
const batchScale = 60

// ValidRate reports whether rate can be used in a RateTable.
func ValidRate(rate int) bool {
	return rate > 0 && batchScale%rate == 0
}

// OfferedBatches returns Σ quantity/rate over offered, scaled by batchScale.
// offered must be Valid.
func OfferedBatches(offered Cost, rates RateTable) int {
	total := 0
	for r, n := range offered {
		rate := rates[r]
		if rate <= 0 {
			rate = 1
		}
		total += n * (batchScale / rate)
	}
	return total
}

// RequestedBatches returns Σ quantity over requested (1:1), scaled by batchScale.
// requested must be Valid.
func RequestedBatches(requested Cost) int {
	return requested.Total() * batchScale
}

// TradeResult reports what a trade moved.
type TradeResult struct {
	Paid     Cost `json:"paid"`
	Received Cost `json:"received"` // Capacity-capped amounts actually credited
	Batches  int  `json:"batches"`
}

// Trade exchanges offered for requested at the given rates. The trade is
// atomic: batch mismatch, bad input, or insufficient offered resources
// leave the ledger untouched. Received resources are credited up to limit.
func (l *Ledger) Trade(offered, requested Cost, rates RateTable, limit int) (TradeResult, error) {
	if !offered.Valid() || !requested.Valid() || offered.Total() == 0 || requested.Total() == 0 {
		return TradeResult{}, errs.Validationf(errs.ErrInvalidArgument, "offer %s for %s", offered, requested)
	}
	for _, r := range world.AllResources {
		if !ValidRate(rates[r]) {
			return TradeResult{}, errs.Validationf(errs.ErrInvalidArgument, "unsupported rate %d for %s", rates[r], r)
		}
	}

	ob := OfferedBatches(offered, rates)
	rb := RequestedBatches(requested)
	if ob != rb {
		return TradeResult{}, errs.Validationf(errs.ErrBatchMismatch,
			"offer %s is worth %.2f batches, request %s needs %d",
			offered, float64(ob)/batchScale, requested, requested.Total())
	}
	if err := l.Pay(offered); err != nil {
		return TradeResult{}, err
	}

	received := make(Cost, len(requested))
	for _, r := range world.AllResources {
		if n := requested[r]; n > 0 {
			received[r] = l.AddCapped(r, n, limit)
		}
	}
	paid := make(Cost, len(offered))
	for r, n := range offered {
		paid[r] = n
	}
	return TradeResult{Paid: paid, Received: received, Batches: requested.Total()}, nil
}
