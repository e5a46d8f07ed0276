package engine

import (
	"container/list"
	"sync"

	"github.com/google/btree"

	"github.com/efreitasn/limitbook/internal/domain"
)

// level is all orders resting at one price on one side. The FIFO encodes
// time priority: joiners append at the tail, matching consumes the head.
// An empty level is removed from its side immediately.
type level struct {
	price  domain.Price
	orders *list.List // of *domain.Order
}

// entry is the order index record: the order plus a node-stable handle into
// its level FIFO, so cancels are O(1) and survive unrelated inserts and
// removes at the same level.
type entry struct {
	order *domain.Order
	level *level
	elem  *list.Element
}

// levelMeta is the incrementally maintained aggregate for one price:
// resting-order count and summed remaining quantity. A price lives on at
// most one side at any observable point, so one flat map covers both.
type levelMeta struct {
	count    int
	quantity domain.Quantity
}

// bidLevelLess orders the bid side price descending: Min() is the best bid.
func bidLevelLess(a, b *level) bool {
	return a.price > b.price
}

// askLevelLess orders the ask side price ascending: Min() is the best ask.
func askLevelLess(a, b *level) bool {
	return a.price < b.price
}

// Book is a single-instrument, price-time-priority limit order book. One
// mutex serializes every operation, so any number of goroutines may submit,
// cancel, modify, and read concurrently.
type Book struct {
	mu     sync.Mutex
	bids   *btree.BTreeG[*level]
	asks   *btree.BTreeG[*level]
	orders map[domain.OrderID]*entry
	levels map[domain.Price]*levelMeta
}

// NewBook creates an empty book.
func NewBook() *Book {
	const degree = 32
	return &Book{
		bids:   btree.NewG(degree, bidLevelLess),
		asks:   btree.NewG(degree, askLevelLess),
		orders: make(map[domain.OrderID]*entry),
		levels: make(map[domain.Price]*levelMeta),
	}
}

// sideTree returns the tree holding the given side.
func (b *Book) sideTree(side domain.Side) *btree.BTreeG[*level] {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// insert places an order at the tail of its level's FIFO, creating the
// level if needed, and records it in the order index and level metadata.
func (b *Book) insert(order *domain.Order) {
	tree := b.sideTree(order.Side())
	lvl, ok := tree.Get(&level{price: order.Price()})
	if !ok {
		lvl = &level{price: order.Price(), orders: list.New()}
		tree.ReplaceOrInsert(lvl)
	}
	elem := lvl.orders.PushBack(order)
	b.orders[order.ID()] = &entry{order: order, level: lvl, elem: elem}
	b.metaAdd(order)
}

// remove takes a resting order off the book: unlinks it from its FIFO,
// drops the level if now empty, erases the index entry, and updates the
// level metadata.
func (b *Book) remove(e *entry) {
	e.level.orders.Remove(e.elem)
	delete(b.orders, e.order.ID())
	if e.level.orders.Len() == 0 {
		b.sideTree(e.order.Side()).Delete(e.level)
	}
	b.metaRemove(e.order)
}

func (b *Book) metaAdd(order *domain.Order) {
	meta, ok := b.levels[order.Price()]
	if !ok {
		meta = &levelMeta{}
		b.levels[order.Price()] = meta
	}
	meta.count++
	meta.quantity += order.Remaining()
}

func (b *Book) metaRemove(order *domain.Order) {
	meta := b.levels[order.Price()]
	meta.count--
	meta.quantity -= order.Remaining()
	if meta.count == 0 {
		delete(b.levels, order.Price())
	}
}

// metaFill records a match at price: quantity leaves the level, and the
// order leaves the count if it fully filled.
func (b *Book) metaFill(price domain.Price, quantity domain.Quantity, filled bool) {
	meta := b.levels[price]
	meta.quantity -= quantity
	if filled {
		meta.count--
	}
	if meta.count == 0 {
		delete(b.levels, price)
	}
}

// worstOppositePrice returns the worst resting price on the side opposite
// the given one: the highest ask for a buy, the lowest bid for a sell.
// Used to convert market orders at admission.
func (b *Book) worstOppositePrice(side domain.Side) (domain.Price, bool) {
	lvl, ok := b.sideTree(side.Opposite()).Max()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

// Size returns the number of orders resting on the book.
func (b *Book) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

// Has reports whether an order with the given id is resting on the book.
func (b *Book) Has(id domain.OrderID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.orders[id]
	return ok
}

// OrderInfo is a by-value exposure of one resting order.
type OrderInfo struct {
	ID        domain.OrderID
	Type      domain.OrderType
	Side      domain.Side
	Price     domain.Price
	Initial   domain.Quantity
	Remaining domain.Quantity
}

// Order returns a copy of the identified resting order's observable fields.
func (b *Book) Order(id domain.OrderID) (OrderInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.orders[id]
	if !ok {
		return OrderInfo{}, false
	}
	return OrderInfo{
		ID:        e.order.ID(),
		Type:      e.order.Type(),
		Side:      e.order.Side(),
		Price:     e.order.Price(),
		Initial:   e.order.Initial(),
		Remaining: e.order.Remaining(),
	}, true
}

// Snapshot returns a read-consistent, level-aggregated view of both sides,
// best-first. It sums the authoritative FIFOs rather than reading the level
// metadata, so it doubles as an independent cross-check on the metadata.
func (b *Book) Snapshot() domain.BookSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	collect := func(tree *btree.BTreeG[*level]) []domain.LevelInfo {
		infos := make([]domain.LevelInfo, 0, tree.Len())
		tree.Ascend(func(lvl *level) bool {
			var total domain.Quantity
			for e := lvl.orders.Front(); e != nil; e = e.Next() {
				total += e.Value.(*domain.Order).Remaining()
			}
			infos = append(infos, domain.LevelInfo{Price: lvl.price, Quantity: total})
			return true
		})
		return infos
	}

	return domain.BookSnapshot{
		Bids: collect(b.bids),
		Asks: collect(b.asks),
	}
}

// GoodForDayIDs returns the ids of every resting GoodForDay order. The lock
// is held only for the collection, so a subsequent batch cancel runs against
// current state and ids filled or cancelled in between are no-ops.
func (b *Book) GoodForDayIDs() []domain.OrderID {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []domain.OrderID
	for id, e := range b.orders {
		if e.order.Type() == domain.GoodForDay {
			ids = append(ids, id)
		}
	}
	return ids
}
