package domain

import "time"

// TradeInfo is one side's view of a single matching event. Price is the
// matched order's own limit price, so the bid and ask infos of one trade
// may differ when the aggressor's limit was inside the maker's.
type TradeInfo struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade records a single matching event at a single quantity.
type Trade struct {
	Bid TradeInfo
	Ask TradeInfo
}

// Execution is a Trade enriched with the identity and timestamp assigned
// when it was recorded. The tape price of an execution is the ask-side
// price by convention.
type Execution struct {
	TradeID    string
	Bid        TradeInfo
	Ask        TradeInfo
	ExecutedAt time.Time
}

// Price returns the tape price of the execution.
func (e Execution) Price() Price { return e.Ask.Price }

// Quantity returns the matched quantity.
func (e Execution) Quantity() Quantity { return e.Bid.Quantity }

// LevelInfo is the aggregate of one price level: the price and the summed
// remaining quantity of every order resting there.
type LevelInfo struct {
	Price    Price
	Quantity Quantity
}

// BookSnapshot is a read-consistent, level-aggregated view of the book,
// best-first per side.
type BookSnapshot struct {
	Bids []LevelInfo
	Asks []LevelInfo
}
