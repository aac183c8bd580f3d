package market

import "fmt"

// Timeframe is a named chart resolution. The zero value is invalid so an
// unset field never silently means a real timeframe.
type Timeframe int

const (
	Daily Timeframe = iota + 1
	FourHour
	Hour
	HalfHour
	Quarter
)

// Period maps the timeframe to the broker's period code in minutes.
// Unknown values are an error, not a fallback.
func (tf Timeframe) Period() (int, error) {
	switch tf {
	case Daily:
		return 1440, nil
	case FourHour:
		return 240, nil
	case Hour:
		return 60, nil
	case HalfHour:
		return 30, nil
	case Quarter:
		return 15, nil
	default:
		return 0, fmt.Errorf("market: unknown timeframe %d", int(tf))
	}
}

func (tf Timeframe) String() string {
	switch tf {
	case Daily:
		return "D1"
	case FourHour:
		return "H4"
	case Hour:
		return "H1"
	case HalfHour:
		return "M30"
	case Quarter:
		return "M15"
	default:
		return fmt.Sprintf("Timeframe(%d)", int(tf))
	}
}
