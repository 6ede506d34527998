package models

import (
	"time"

	"github.com/moznion/go-optional"
)

// Bar is one daily price summary returned by a historical price provider.
//
// Fields:
//   - Date: the session timestamp reported by the provider.
//   - High: highest traded price of the session.
//   - Close: closing price. Providers occasionally publish a bar without a close
//     (Yahoo emits null for a session still in progress), so it is optional.
type Bar struct {
	Date  time.Time
	High  float64
	Close optional.Option[float64]
}

// NewBar builds a Bar with a known close price.
func NewBar(date time.Time, high, closePrice float64) Bar {
	return Bar{Date: date, High: high, Close: optional.Some(closePrice)}
}
