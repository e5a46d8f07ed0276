package domain

import (
	"errors"
	"testing"
)

func TestNewOrder_Valid(t *testing.T) {
	o, err := NewOrder(GoodTillCancel, 1, SideBuy, 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID() != 1 || o.Type() != GoodTillCancel || o.Side() != SideBuy {
		t.Errorf("unexpected identity: %d %s %s", o.ID(), o.Type(), o.Side())
	}
	if o.Price() != 100 || o.Initial() != 10 || o.Remaining() != 10 {
		t.Errorf("unexpected quantities: price=%d initial=%d remaining=%d", o.Price(), o.Initial(), o.Remaining())
	}
	if o.Filled() != 0 || o.IsFilled() {
		t.Error("new order must be unfilled")
	}
}

func TestNewOrder_RejectsBadInputs(t *testing.T) {
	tests := []struct {
		name  string
		price Price
		qty   Quantity
		want  error
	}{
		{"zero quantity", 100, 0, ErrInvalidQuantity},
		{"negative quantity", 100, -5, ErrInvalidQuantity},
		{"zero price", 0, 10, ErrInvalidPrice},
		{"negative price", -100, 10, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(GoodTillCancel, 1, SideBuy, tt.price, tt.qty)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewOrder_RejectsMarketType(t *testing.T) {
	if _, err := NewOrder(Market, 1, SideBuy, 100, 10); err == nil {
		t.Error("expected market orders to use NewMarketOrder")
	}
}

func TestNewMarketOrder(t *testing.T) {
	o, err := NewMarketOrder(1, SideSell, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Type() != Market {
		t.Errorf("expected market type, got %s", o.Type())
	}

	if _, err := NewMarketOrder(2, SideSell, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestOrder_Fill(t *testing.T) {
	o, _ := NewOrder(GoodTillCancel, 1, SideBuy, 100, 10)

	o.Fill(4)
	if o.Remaining() != 6 || o.Filled() != 4 || o.IsFilled() {
		t.Errorf("after fill(4): remaining=%d filled=%d", o.Remaining(), o.Filled())
	}

	o.Fill(6)
	if !o.IsFilled() || o.Filled() != 10 {
		t.Errorf("after fill(6): remaining=%d filled=%d", o.Remaining(), o.Filled())
	}
}

func TestOrder_OverfillPanics(t *testing.T) {
	o, _ := NewOrder(GoodTillCancel, 1, SideBuy, 100, 10)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on overfill")
		}
	}()
	o.Fill(11)
}

func TestOrder_ToGoodTillCancel(t *testing.T) {
	o, _ := NewMarketOrder(1, SideBuy, 10)
	o.ToGoodTillCancel(105)
	if o.Type() != GoodTillCancel || o.Price() != 105 {
		t.Errorf("expected GTC at 105, got %s at %d", o.Type(), o.Price())
	}
}

func TestOrder_ToGoodTillCancelPanicsForLimitOrders(t *testing.T) {
	o, _ := NewOrder(GoodTillCancel, 1, SideBuy, 100, 10)
	defer func() {
		if recover() == nil {
			t.Error("expected panic converting a non-market order")
		}
	}()
	o.ToGoodTillCancel(105)
}

func TestOrderModify_ToOrder(t *testing.T) {
	m := OrderModify{ID: 1, Side: SideSell, Price: 101, Quantity: 7}

	// Type and side come from the caller (the engine passes the resting
	// order's values), not from the modify.
	o, err := m.ToOrder(GoodForDay, SideBuy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Type() != GoodForDay || o.Side() != SideBuy {
		t.Errorf("expected carried type/side, got %s/%s", o.Type(), o.Side())
	}
	if o.Price() != 101 || o.Initial() != 7 {
		t.Errorf("expected price 101 qty 7, got %d/%d", o.Price(), o.Initial())
	}

	if _, err := (OrderModify{ID: 1, Price: 0, Quantity: 7}).ToOrder(GoodTillCancel, SideBuy); err == nil {
		t.Error("expected invalid modify price to be rejected")
	}
}
