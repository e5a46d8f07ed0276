package domain

import "testing"

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want Side
		ok   bool
	}{
		{"buy", SideBuy, true},
		{"bid", SideBuy, true},
		{"sell", SideSell, true},
		{"ask", SideSell, true},
		{"hold", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseSide(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseSide(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseSide(%q): expected error", tt.in)
		}
	}
}

func TestSide_Opposite(t *testing.T) {
	if SideBuy.Opposite() != SideSell || SideSell.Opposite() != SideBuy {
		t.Error("Opposite must swap sides")
	}
}

func TestParseOrderType(t *testing.T) {
	tests := []struct {
		in   string
		want OrderType
		ok   bool
	}{
		{"good_till_cancel", GoodTillCancel, true},
		{"gtc", GoodTillCancel, true},
		{"good_for_day", GoodForDay, true},
		{"gfd", GoodForDay, true},
		{"day", GoodForDay, true},
		{"fill_and_kill", FillAndKill, true},
		{"ioc", FillAndKill, true},
		{"fak", FillAndKill, true},
		{"fill_or_kill", FillOrKill, true},
		{"fok", FillOrKill, true},
		{"market", Market, true},
		{"limit", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseOrderType(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseOrderType(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseOrderType(%q): expected error", tt.in)
		}
	}
}

func TestOrderType_RoundTripsThroughString(t *testing.T) {
	for _, typ := range []OrderType{GoodTillCancel, GoodForDay, FillAndKill, FillOrKill, Market} {
		got, err := ParseOrderType(typ.String())
		if err != nil || got != typ {
			t.Errorf("round trip of %v failed: %v, %v", typ, got, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:15:30")
	if err != nil || got != (TimeOfDay{Hour: 9, Minute: 15, Second: 30}) {
		t.Errorf("ParseTimeOfDay = %+v, %v", got, err)
	}
	if got.String() != "09:15:30" {
		t.Errorf("String() = %q", got.String())
	}

	for _, bad := range []string{"", "16", "16:00", "16:60:00", "16:00:60", "-1:00:00"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
