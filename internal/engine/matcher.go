package engine

import (
	"github.com/google/btree"

	"github.com/efreitasn/limitbook/internal/domain"
)

// AddOrder admits an order and runs it through the matching engine,
// returning the trades it produced in execution order. The call is atomic:
// the order is either accepted and matched to completion of its admission
// wave, or rejected with no observable side effect. Rejections (duplicate
// id, market order against an empty opposite side, infeasible FillAndKill
// or FillOrKill) return an empty slice.
func (b *Book) AddOrder(order *domain.Order) []domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(order)
}

func (b *Book) addLocked(order *domain.Order) []domain.Trade {
	if _, ok := b.orders[order.ID()]; ok {
		return nil
	}

	if order.Type() == domain.Market {
		// Market orders never rest: convert to GoodTillCancel at the worst
		// opposite resting price, or reject when there is nothing to hit.
		worst, ok := b.worstOppositePrice(order.Side())
		if !ok {
			return nil
		}
		order.ToGoodTillCancel(worst)
	}

	if order.Type() == domain.FillAndKill && !b.canMatch(order.Side(), order.Price()) {
		return nil
	}

	if order.Type() == domain.FillOrKill && !b.canFullyFill(order.Side(), order.Price(), order.Remaining()) {
		return nil
	}

	b.insert(order)
	return b.matchLoop()
}

// canMatch reports whether an order at price on side would cross the best
// opposite resting price.
func (b *Book) canMatch(side domain.Side, price domain.Price) bool {
	best, ok := b.sideTree(side.Opposite()).Min()
	if !ok {
		return false
	}
	if side == domain.SideBuy {
		return price >= best.price
	}
	return price <= best.price
}

// canFullyFill reports whether the opposite side holds at least quantity
// across levels that cross price. It reads the level metadata aggregates,
// so the walk is O(crossing levels), not O(crossing orders).
func (b *Book) canFullyFill(side domain.Side, price domain.Price, quantity domain.Quantity) bool {
	remaining := quantity
	b.sideTree(side.Opposite()).Ascend(func(lvl *level) bool {
		if side == domain.SideBuy && lvl.price > price {
			return false
		}
		if side == domain.SideSell && lvl.price < price {
			return false
		}
		remaining -= b.levels[lvl.price].quantity
		return remaining > 0
	})
	return remaining <= 0
}

// matchLoop crosses the book until the best bid no longer reaches the best
// ask, consuming level FIFOs head-first. Each TradeInfo carries its own
// order's limit price, so the maker's price is honored when the aggressor's
// limit was inside it.
func (b *Book) matchLoop() []domain.Trade {
	var trades []domain.Trade

	for {
		bidLvl, ok := b.bids.Min()
		if !ok {
			break
		}
		askLvl, ok := b.asks.Min()
		if !ok {
			break
		}
		if bidLvl.price < askLvl.price {
			break
		}

		for bidLvl.orders.Len() > 0 && askLvl.orders.Len() > 0 {
			bid := bidLvl.orders.Front().Value.(*domain.Order)
			ask := askLvl.orders.Front().Value.(*domain.Order)

			quantity := min(bid.Remaining(), ask.Remaining())
			bid.Fill(quantity)
			ask.Fill(quantity)

			if bid.IsFilled() {
				bidLvl.orders.Remove(bidLvl.orders.Front())
				delete(b.orders, bid.ID())
			}
			if ask.IsFilled() {
				askLvl.orders.Remove(askLvl.orders.Front())
				delete(b.orders, ask.ID())
			}
			b.metaFill(bidLvl.price, quantity, bid.IsFilled())
			b.metaFill(askLvl.price, quantity, ask.IsFilled())

			trades = append(trades, domain.Trade{
				Bid: domain.TradeInfo{OrderID: bid.ID(), Price: bid.Price(), Quantity: quantity},
				Ask: domain.TradeInfo{OrderID: ask.ID(), Price: ask.Price(), Quantity: quantity},
			})
		}

		if bidLvl.orders.Len() == 0 {
			b.bids.Delete(bidLvl)
		}
		if askLvl.orders.Len() == 0 {
			b.asks.Delete(askLvl)
		}
	}

	// A FillAndKill that crossed partially must not rest; it is the only
	// order type that can still top a side here immediately after matching.
	b.cancelTopFillAndKill(b.bids)
	b.cancelTopFillAndKill(b.asks)

	return trades
}

func (b *Book) cancelTopFillAndKill(tree *btree.BTreeG[*level]) {
	lvl, ok := tree.Min()
	if !ok {
		return
	}
	front := lvl.orders.Front()
	if front == nil {
		return
	}
	if order := front.Value.(*domain.Order); order.Type() == domain.FillAndKill {
		b.cancelLocked(order.ID())
	}
}

// CancelOrder removes a resting order from the book. Unknown ids are a
// no-op; a cancel that races with matching either finds the order still
// resting or finds it already gone.
func (b *Book) CancelOrder(id domain.OrderID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelLocked(id)
}

// CancelOrders removes a batch of orders under a single lock acquisition.
func (b *Book) CancelOrders(ids []domain.OrderID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.cancelLocked(id)
	}
}

func (b *Book) cancelLocked(id domain.OrderID) {
	e, ok := b.orders[id]
	if !ok {
		return
	}
	b.remove(e)
}

// ModifyOrder replaces a resting order's price and quantity as cancel+add
// under one lock acquisition, returning any trades the re-add produced.
// The resting order's type and side are carried over; OrderModify.Side is
// ignored. Modifications lose time priority unconditionally. An unknown id
// or an invalid replacement returns an empty slice with no side effect.
func (b *Book) ModifyOrder(modify domain.OrderModify) []domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.orders[modify.ID]
	if !ok {
		return nil
	}
	order, err := modify.ToOrder(e.order.Type(), e.order.Side())
	if err != nil {
		return nil
	}
	b.cancelLocked(modify.ID)
	return b.addLocked(order)
}
