package eventmodels

import (
	"fmt"
	"math"
)

// OptionQuote is a single snapshot row: one observed market price for an
// option (or the underlying future itself) at a point in time. Quotes are
// value types and are not mutated after creation.
type OptionQuote struct {
	Symbol       string
	Underlying   InstrumentID
	Type         OptionType
	Strike       float64
	TimeToExpiry float64
	FuturePrice  float64
	MarketPrice  float64
}

func (q OptionQuote) Validate() error {
	if err := q.Type.Validate(); err != nil {
		return fmt.Errorf("OptionQuote.Validate: %w", err)
	}

	for name, v := range map[string]float64{
		"strike":         q.Strike,
		"time to expiry": q.TimeToExpiry,
		"future price":   q.FuturePrice,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("OptionQuote.Validate: %s is not finite: %v", name, v)
		}
	}

	if q.TimeToExpiry < 0 {
		return fmt.Errorf("OptionQuote.Validate: time to expiry %v is negative", q.TimeToExpiry)
	}

	if math.IsNaN(q.MarketPrice) || math.IsInf(q.MarketPrice, 0) || q.MarketPrice < 0 {
		return fmt.Errorf("OptionQuote.Validate: found %v: %w", q.MarketPrice, InvalidMarketPriceErr)
	}

	return nil
}

// Moneyness is F - K, signed.
func (q OptionQuote) Moneyness() float64 {
	return q.FuturePrice - q.Strike
}

// IntrinsicExceedsPrice flags quotes whose absolute moneyness is larger than
// the observed price. Such rows are still solved but carry a data quality
// warning.
func (q OptionQuote) IntrinsicExceedsPrice() bool {
	return math.Abs(q.Moneyness()) > q.MarketPrice
}
