package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/feed"
	"github.com/efreitasn/limitbook/internal/journal"
	"github.com/efreitasn/limitbook/internal/store"
)

// Submission outcomes as observed by the caller.
const (
	StatusRejected        = "rejected"
	StatusResting         = "resting"
	StatusPartiallyFilled = "partially_filled"
	StatusFilled          = "filled"
	StatusKilled          = "killed"
)

// SubmitOrderRequest is the input for order submission. Price is a decimal
// string and must be empty for market orders.
type SubmitOrderRequest struct {
	ID       domain.OrderID
	Type     string
	Side     string
	Price    string
	Quantity int64
}

// ModifyOrderRequest replaces a resting order's price and quantity.
type ModifyOrderRequest struct {
	ID       domain.OrderID
	Side     string
	Price    string
	Quantity int64
}

// SubmitResult reports how a submission or modify ended up and the
// executions it produced.
type SubmitResult struct {
	OrderID domain.OrderID
	Status  string
	Trades  []domain.Execution
}

// OrderService validates requests, drives the matching engine, and records
// every execution on the tape, in the journal, and on the live feed.
type OrderService struct {
	book    *engine.Book
	tape    *store.TradeStore
	journal *journal.Journal // nil disables persistence
	hub     *feed.Hub
	ticks   TickConverter
	logger  *slog.Logger
}

// NewOrderService creates an OrderService with the given collaborators.
func NewOrderService(
	book *engine.Book,
	tape *store.TradeStore,
	j *journal.Journal,
	hub *feed.Hub,
	ticks TickConverter,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		book:    book,
		tape:    tape,
		journal: j,
		hub:     hub,
		ticks:   ticks,
		logger:  logger,
	}
}

// SubmitOrder validates the request, runs it through the engine, and
// records any executions. Duplicate ids are reported as an error here;
// inside the engine they are a silent no-op.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (SubmitResult, error) {
	orderType, err := domain.ParseOrderType(req.Type)
	if err != nil {
		return SubmitResult{}, err
	}
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return SubmitResult{}, err
	}

	var order *domain.Order
	if orderType == domain.Market {
		if req.Price != "" {
			return SubmitResult{}, &domain.ValidationError{Message: "market orders must not carry a price"}
		}
		order, err = domain.NewMarketOrder(req.ID, side, req.Quantity)
	} else {
		if req.Price == "" {
			return SubmitResult{}, &domain.ValidationError{Message: "price is required for non-market orders"}
		}
		var price domain.Price
		price, err = s.ticks.ToTicks(req.Price)
		if err != nil {
			return SubmitResult{}, err
		}
		order, err = domain.NewOrder(orderType, req.ID, side, price, req.Quantity)
	}
	if err != nil {
		return SubmitResult{}, err
	}

	if s.book.Has(req.ID) {
		return SubmitResult{}, domain.ErrDuplicateOrder
	}

	trades := s.book.AddOrder(order)
	executions := s.record(trades)

	return SubmitResult{
		OrderID: req.ID,
		Status:  s.status(req.ID, req.Quantity, executions),
		Trades:  executions,
	}, nil
}

// CancelOrder removes a resting order. Returns ErrOrderNotFound when no
// order with that id is resting.
func (s *OrderService) CancelOrder(id domain.OrderID) error {
	if !s.book.Has(id) {
		return domain.ErrOrderNotFound
	}
	s.book.CancelOrder(id)
	return nil
}

// ModifyOrder re-prices a resting order as cancel+add, losing time
// priority, and records any executions the re-add produced.
func (s *OrderService) ModifyOrder(req ModifyOrderRequest) (SubmitResult, error) {
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return SubmitResult{}, err
	}
	price, err := s.ticks.ToTicks(req.Price)
	if err != nil {
		return SubmitResult{}, err
	}
	if req.Quantity <= 0 {
		return SubmitResult{}, domain.ErrInvalidQuantity
	}
	if !s.book.Has(req.ID) {
		return SubmitResult{}, domain.ErrOrderNotFound
	}

	trades := s.book.ModifyOrder(domain.OrderModify{
		ID:       req.ID,
		Side:     side,
		Price:    price,
		Quantity: req.Quantity,
	})
	executions := s.record(trades)

	return SubmitResult{
		OrderID: req.ID,
		Status:  s.status(req.ID, req.Quantity, executions),
		Trades:  executions,
	}, nil
}

// Order returns a by-value view of a resting order.
func (s *OrderService) Order(id domain.OrderID) (engine.OrderInfo, error) {
	info, ok := s.book.Order(id)
	if !ok {
		return engine.OrderInfo{}, domain.ErrOrderNotFound
	}
	return info, nil
}

// Converter exposes the tick converter used for price parsing.
func (s *OrderService) Converter() TickConverter {
	return s.ticks
}

// record assigns identity and time to each trade and fans it out to the
// tape, the journal, and the live feed.
func (s *OrderService) record(trades []domain.Trade) []domain.Execution {
	if len(trades) == 0 {
		return nil
	}
	executedAt := time.Now()
	executions := make([]domain.Execution, 0, len(trades))
	for _, t := range trades {
		e := domain.Execution{
			TradeID:    uuid.New().String(),
			Bid:        t.Bid,
			Ask:        t.Ask,
			ExecutedAt: executedAt,
		}
		s.tape.Append(e)
		if s.journal != nil {
			if err := s.journal.Append(e); err != nil {
				s.logger.Error("journal append failed",
					slog.String("trade_id", e.TradeID),
					slog.String("error", err.Error()))
			}
		}
		s.hub.Broadcast(e)
		executions = append(executions, e)
	}
	return executions
}

// status derives the submission outcome from what traded and whether the
// order still rests.
func (s *OrderService) status(id domain.OrderID, quantity int64, executions []domain.Execution) string {
	var traded domain.Quantity
	for _, e := range executions {
		traded += e.Quantity()
	}
	resting := s.book.Has(id)

	switch {
	case traded == quantity:
		return StatusFilled
	case resting && traded > 0:
		return StatusPartiallyFilled
	case resting:
		return StatusResting
	case traded > 0:
		// Matched partially and did not rest: a FillAndKill residual.
		return StatusKilled
	default:
		return StatusRejected
	}
}
