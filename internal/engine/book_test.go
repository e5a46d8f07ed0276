package engine

import (
	"testing"

	"github.com/efreitasn/limitbook/internal/domain"
)

// checkBookInvariants asserts the structural invariants that must hold
// after every operation: index/FIFO agreement, no empty levels, metadata
// consistency, and an uncrossed book.
func checkBookInvariants(t *testing.T, b *Book) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	// Every indexed order hangs off exactly the level its handle points at,
	// at a price equal to its own.
	for id, e := range b.orders {
		if e.elem.Value.(*domain.Order) != e.order {
			t.Fatalf("order %d: index handle does not reference the order", id)
		}
		if e.level.price != e.order.Price() {
			t.Fatalf("order %d: resting at level %d but priced %d", id, e.level.price, e.order.Price())
		}
		lvl, ok := b.sideTree(e.order.Side()).Get(&level{price: e.order.Price()})
		if !ok || lvl != e.level {
			t.Fatalf("order %d: its level is not in the %s tree", id, e.order.Side())
		}
		if e.order.Remaining() <= 0 || e.order.Remaining() > e.order.Initial() {
			t.Fatalf("order %d: remaining %d out of (0, %d]", id, e.order.Remaining(), e.order.Initial())
		}
	}

	// Every order in a side is indexed, no level is empty, and the metadata
	// matches the FIFOs exactly.
	total := 0
	check := func(side domain.Side) {
		b.sideTree(side).Ascend(func(lvl *level) bool {
			if lvl.orders.Len() == 0 {
				t.Fatalf("empty level observable at price %d", lvl.price)
			}
			meta, ok := b.levels[lvl.price]
			if !ok {
				t.Fatalf("level %d missing from metadata", lvl.price)
			}
			var quantity domain.Quantity
			for el := lvl.orders.Front(); el != nil; el = el.Next() {
				o := el.Value.(*domain.Order)
				e, ok := b.orders[o.ID()]
				if !ok || e.order != o {
					t.Fatalf("order %d in level %d not indexed", o.ID(), lvl.price)
				}
				quantity += o.Remaining()
				total++
			}
			if meta.count != lvl.orders.Len() {
				t.Fatalf("level %d: metadata count %d, fifo %d", lvl.price, meta.count, lvl.orders.Len())
			}
			if meta.quantity != quantity {
				t.Fatalf("level %d: metadata quantity %d, fifo sum %d", lvl.price, meta.quantity, quantity)
			}
			return true
		})
	}
	check(domain.SideBuy)
	check(domain.SideSell)

	if total != len(b.orders) {
		t.Fatalf("index holds %d orders, sides hold %d", len(b.orders), total)
	}
	if len(b.levels) != b.bids.Len()+b.asks.Len() {
		t.Fatalf("metadata holds %d levels, trees hold %d", len(b.levels), b.bids.Len()+b.asks.Len())
	}

	// Post-condition of the crossing loop.
	if bestBid, ok := b.bids.Min(); ok {
		if bestAsk, ok := b.asks.Min(); ok && bestBid.price >= bestAsk.price {
			t.Fatalf("book is crossed: best bid %d >= best ask %d", bestBid.price, bestAsk.price)
		}
	}
}

func TestBook_LevelFIFOAndMetadata(t *testing.T) {
	b := NewBook()

	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 1, domain.SideBuy, 100, 5))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 2, domain.SideBuy, 100, 7))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 3, domain.SideBuy, 99, 2))
	checkBookInvariants(t, b)

	// Cancelling the head must leave the later joiner's handle intact.
	b.CancelOrder(1)
	checkBookInvariants(t, b)
	if !b.Has(2) {
		t.Fatal("expected order 2 still resting")
	}
	b.CancelOrder(2)
	checkBookInvariants(t, b)

	snap := b.Snapshot()
	if len(snap.Bids) != 1 || snap.Bids[0].Price != 99 {
		t.Errorf("expected only level 99 left, got %+v", snap.Bids)
	}
}

func TestBook_SnapshotBestFirst(t *testing.T) {
	b := NewBook()

	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 1, domain.SideBuy, 98, 1))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 2, domain.SideBuy, 100, 2))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 3, domain.SideBuy, 99, 3))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 4, domain.SideSell, 103, 4))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 5, domain.SideSell, 101, 5))

	snap := b.Snapshot()
	wantBids := []domain.LevelInfo{{Price: 100, Quantity: 2}, {Price: 99, Quantity: 3}, {Price: 98, Quantity: 1}}
	wantAsks := []domain.LevelInfo{{Price: 101, Quantity: 5}, {Price: 103, Quantity: 4}}

	if len(snap.Bids) != len(wantBids) {
		t.Fatalf("expected %d bid levels, got %d", len(wantBids), len(snap.Bids))
	}
	for i, want := range wantBids {
		if snap.Bids[i] != want {
			t.Errorf("bid level %d: expected %+v, got %+v", i, want, snap.Bids[i])
		}
	}
	if len(snap.Asks) != len(wantAsks) {
		t.Fatalf("expected %d ask levels, got %d", len(wantAsks), len(snap.Asks))
	}
	for i, want := range wantAsks {
		if snap.Asks[i] != want {
			t.Errorf("ask level %d: expected %+v, got %+v", i, want, snap.Asks[i])
		}
	}
}

func TestBook_WorstOppositePrice(t *testing.T) {
	b := NewBook()

	if _, ok := b.worstOppositePriceLocked(domain.SideBuy); ok {
		t.Error("expected no worst price on empty book")
	}

	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 1, domain.SideSell, 101, 1))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 2, domain.SideSell, 105, 1))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 3, domain.SideBuy, 95, 1))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 4, domain.SideBuy, 99, 1))

	if p, ok := b.worstOppositePriceLocked(domain.SideBuy); !ok || p != 105 {
		t.Errorf("expected worst ask 105, got %d (ok=%v)", p, ok)
	}
	if p, ok := b.worstOppositePriceLocked(domain.SideSell); !ok || p != 95 {
		t.Errorf("expected worst bid 95, got %d (ok=%v)", p, ok)
	}
}

// worstOppositePriceLocked wraps worstOppositePrice with the lock for tests.
func (b *Book) worstOppositePriceLocked(side domain.Side) (domain.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.worstOppositePrice(side)
}

func TestBook_MetadataNotRecomputedOnAdmission(t *testing.T) {
	b := NewBook()

	// Partial fills must keep metadata quantities current so FOK admission
	// sees displaceable depth, not initial depth.
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 1, domain.SideSell, 100, 10))
	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 2, domain.SideBuy, 100, 6))
	checkBookInvariants(t, b)

	// Remaining depth at 100 is 4; a FOK for 5 must be rejected.
	trades := b.AddOrder(mustOrder(t, domain.FillOrKill, 3, domain.SideBuy, 100, 5))
	if len(trades) != 0 {
		t.Errorf("expected FOK rejection against depth 4, got %d trades", len(trades))
	}
	trades = b.AddOrder(mustOrder(t, domain.FillOrKill, 4, domain.SideBuy, 100, 4))
	if len(trades) != 1 {
		t.Errorf("expected FOK fill against depth 4, got %d trades", len(trades))
	}
	checkBookInvariants(t, b)
}

func TestBook_OrderCopyNotAlias(t *testing.T) {
	b := NewBook()

	b.AddOrder(mustOrder(t, domain.GoodTillCancel, 1, domain.SideBuy, 100, 5))
	info, ok := b.Order(1)
	if !ok {
		t.Fatal("expected order 1")
	}
	info.Remaining = 1

	again, _ := b.Order(1)
	if again.Remaining != 5 {
		t.Errorf("expected engine state unaffected by caller mutation, got %d", again.Remaining)
	}
}
