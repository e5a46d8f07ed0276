package domain

import "fmt"

// Price is a limit price expressed in integer ticks.
type Price = int64

// Quantity is a share count.
type Quantity = int64

// OrderID uniquely identifies an order for its whole residency on the book.
type OrderID = uint64

// Side indicates whether an order is a bid (buy) or ask (sell).
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return "unknown"
}

// ParseSide converts a wire string into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy", "bid":
		return SideBuy, nil
	case "sell", "ask":
		return SideSell, nil
	}
	return 0, &ValidationError{Message: "side must be one of: buy, sell"}
}

// OrderType selects the execution style of an order.
type OrderType int

const (
	// GoodTillCancel rests until matched or cancelled.
	GoodTillCancel OrderType = iota
	// GoodForDay rests like GoodTillCancel but is swept at the daily cutoff.
	GoodForDay
	// FillAndKill matches what it can immediately and never rests.
	FillAndKill
	// FillOrKill matches in full immediately or not at all.
	FillOrKill
	// Market converts to GoodTillCancel at the worst opposite resting price.
	Market
)

func (t OrderType) String() string {
	switch t {
	case GoodTillCancel:
		return "good_till_cancel"
	case GoodForDay:
		return "good_for_day"
	case FillAndKill:
		return "fill_and_kill"
	case FillOrKill:
		return "fill_or_kill"
	case Market:
		return "market"
	}
	return "unknown"
}

// ParseOrderType converts a wire string into an OrderType. The short
// aliases match common venue spellings (gtc, gfd, ioc, fok).
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "good_till_cancel", "gtc":
		return GoodTillCancel, nil
	case "good_for_day", "gfd", "day":
		return GoodForDay, nil
	case "fill_and_kill", "fak", "ioc":
		return FillAndKill, nil
	case "fill_or_kill", "fok":
		return FillOrKill, nil
	case "market":
		return Market, nil
	}
	return 0, &ValidationError{Message: "type must be one of: good_till_cancel, good_for_day, fill_and_kill, fill_or_kill, market"}
}

// TimeOfDay is a wall-clock instant within a day, interpreted in local time.
// Good-for-day orders are swept once this instant passes.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses a "HH:MM:SS" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &t.Hour, &t.Minute, &t.Second); err != nil {
		return TimeOfDay{}, fmt.Errorf("must be HH:MM:SS: %w", err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("out of range: %q", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
