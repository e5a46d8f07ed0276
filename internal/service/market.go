package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/store"
)

// MarketService serves read-only market data: depth, recent trades, last
// price, and a windowed VWAP.
type MarketService struct {
	book       *engine.Book
	tape       *store.TradeStore
	ticks      TickConverter
	vwapWindow time.Duration
	now        func() time.Time
}

// NewMarketService creates a MarketService computing VWAP over vwapWindow.
func NewMarketService(book *engine.Book, tape *store.TradeStore, ticks TickConverter, vwapWindow time.Duration) *MarketService {
	return &MarketService{
		book:       book,
		tape:       tape,
		ticks:      ticks,
		vwapWindow: vwapWindow,
		now:        time.Now,
	}
}

// Depth returns up to limit levels per side, best-first. limit <= 0 returns
// the whole book.
func (s *MarketService) Depth(limit int) domain.BookSnapshot {
	snap := s.book.Snapshot()
	if limit > 0 {
		if len(snap.Bids) > limit {
			snap.Bids = snap.Bids[:limit]
		}
		if len(snap.Asks) > limit {
			snap.Asks = snap.Asks[:limit]
		}
	}
	return snap
}

// RecentTrades returns up to n most recent executions, newest last.
func (s *MarketService) RecentTrades(n int) []domain.Execution {
	return s.tape.Recent(n)
}

// LastPrice returns the tape price of the most recent execution.
func (s *MarketService) LastPrice() (domain.Price, bool) {
	last, ok := s.tape.Last()
	if !ok {
		return 0, false
	}
	return last.Price(), true
}

// VWAP computes the volume-weighted average execution price, in price units
// (not ticks), over the configured window. The second return is false when
// nothing traded in the window.
func (s *MarketService) VWAP() (decimal.Decimal, bool) {
	executions := s.tape.Since(s.now().Add(-s.vwapWindow))
	if len(executions) == 0 {
		return decimal.Decimal{}, false
	}

	var notional, volume int64
	for _, e := range executions {
		notional += e.Price() * e.Quantity()
		volume += e.Quantity()
	}
	vwapTicks := decimal.NewFromInt(notional).Div(decimal.NewFromInt(volume))
	return vwapTicks.Mul(s.ticks.tick), true
}

// Converter exposes the tick converter used for price rendering.
func (s *MarketService) Converter() TickConverter {
	return s.ticks
}
