package domain

import "fmt"

// Order is a single instruction to trade. Identity (id, type, side, price,
// initial quantity) is fixed at construction; only the remaining quantity
// changes as fills are applied. The matching engine owns an Order for its
// whole residency on the book and mutates it only under the book lock.
type Order struct {
	id        OrderID
	orderType OrderType
	side      Side
	price     Price
	initial   Quantity
	remaining Quantity
}

// NewOrder builds a limit-style order. Price and quantity must be positive;
// the engine never sees an order that violates either.
func NewOrder(orderType OrderType, id OrderID, side Side, price Price, quantity Quantity) (*Order, error) {
	if orderType == Market {
		return nil, &ValidationError{Message: "market orders carry no price; use NewMarketOrder"}
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		id:        id,
		orderType: orderType,
		side:      side,
		price:     price,
		initial:   quantity,
		remaining: quantity,
	}, nil
}

// NewMarketOrder builds a market order. It carries no price until the engine
// converts it to GoodTillCancel at admission.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		id:        id,
		orderType: Market,
		side:      side,
		initial:   quantity,
		remaining: quantity,
	}, nil
}

func (o *Order) ID() OrderID          { return o.id }
func (o *Order) Type() OrderType      { return o.orderType }
func (o *Order) Side() Side           { return o.side }
func (o *Order) Price() Price         { return o.price }
func (o *Order) Initial() Quantity    { return o.initial }
func (o *Order) Remaining() Quantity  { return o.remaining }
func (o *Order) Filled() Quantity     { return o.initial - o.remaining }
func (o *Order) IsFilled() bool       { return o.remaining == 0 }

// Fill consumes quantity from the order. Overfilling is an engine bug, not
// a caller error, and must not be clamped.
func (o *Order) Fill(quantity Quantity) {
	if quantity > o.remaining {
		panic(fmt.Sprintf("order %d: fill %d exceeds remaining %d", o.id, quantity, o.remaining))
	}
	o.remaining -= quantity
}

// ToGoodTillCancel converts a market order in place to a GoodTillCancel
// order at the given limit price. Only market orders convert, exactly once.
func (o *Order) ToGoodTillCancel(price Price) {
	if o.orderType != Market {
		panic(fmt.Sprintf("order %d: cannot convert %s to good_till_cancel", o.id, o.orderType))
	}
	o.orderType = GoodTillCancel
	o.price = price
}

// OrderModify carries replacement price and quantity for a resting order.
// Side is accepted for API symmetry but the resting order's side and type
// are authoritative at modify time.
type OrderModify struct {
	ID       OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

// ToOrder materializes the modify as a fresh order with the carried-over
// type and side of the order it replaces.
func (m OrderModify) ToOrder(orderType OrderType, side Side) (*Order, error) {
	return NewOrder(orderType, m.ID, side, m.Price, m.Quantity)
}
