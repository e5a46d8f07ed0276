package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders. Price is a
// decimal string and must be absent for market orders.
type submitOrderRequest struct {
	ID       uint64 `json:"id"`
	Type     string `json:"type"`
	Side     string `json:"side"`
	Price    string `json:"price,omitempty"`
	Quantity int64  `json:"quantity"`
}

// modifyOrderRequest is the JSON request body for PUT /orders/{order_id}.
type modifyOrderRequest struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// submitResultResponse is the JSON response for submit and modify.
type submitResultResponse struct {
	OrderID uint64              `json:"order_id"`
	Status  string              `json:"status"`
	Trades  []executionResponse `json:"trades"`
}

// executionResponse is a single execution in a response body. Bid and ask
// prices can differ; each reports the matched order's own limit price.
type executionResponse struct {
	TradeID    string `json:"trade_id"`
	BidOrderID uint64 `json:"bid_order_id"`
	AskOrderID uint64 `json:"ask_order_id"`
	BidPrice   string `json:"bid_price"`
	AskPrice   string `json:"ask_price"`
	Quantity   int64  `json:"quantity"`
	ExecutedAt string `json:"executed_at"`
}

// orderResponse is the JSON response for GET /orders/{order_id}.
type orderResponse struct {
	OrderID   uint64 `json:"order_id"`
	Type      string `json:"type"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Remaining int64  `json:"remaining"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.orderSvc.SubmitOrder(service.SubmitOrderRequest{
		ID:       domain.OrderID(req.ID),
		Type:     req.Type,
		Side:     req.Side,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, h.buildSubmitResponse(res))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	info, err := h.orderSvc.Order(id)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.buildOrderResponse(info))
}

// ModifyOrder handles PUT /orders/{order_id}. The replacement loses time
// priority and keeps the resting order's type and side.
func (h *OrderHandler) ModifyOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req modifyOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.orderSvc.ModifyOrder(service.ModifyOrderRequest{
		ID:       id,
		Side:     req.Side,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.buildSubmitResponse(res))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.orderSvc.CancelOrder(id); err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (domain.OrderID, bool) {
	raw := chi.URLParam(r, "order_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "order_id must be an unsigned integer")
		return 0, false
	}
	return domain.OrderID(id), true
}

func (h *OrderHandler) buildSubmitResponse(res service.SubmitResult) submitResultResponse {
	return submitResultResponse{
		OrderID: uint64(res.OrderID),
		Status:  res.Status,
		Trades:  buildExecutionResponses(res.Trades, h.orderSvc.Converter()),
	}
}

func (h *OrderHandler) buildOrderResponse(info engine.OrderInfo) orderResponse {
	return orderResponse{
		OrderID:   uint64(info.ID),
		Type:      info.Type.String(),
		Side:      info.Side.String(),
		Price:     h.orderSvc.Converter().FromTicks(info.Price),
		Quantity:  int64(info.Initial),
		Remaining: int64(info.Remaining),
	}
}

// buildExecutionResponses converts executions to response trades.
func buildExecutionResponses(executions []domain.Execution, ticks service.TickConverter) []executionResponse {
	result := make([]executionResponse, len(executions))
	for i, e := range executions {
		result[i] = executionResponse{
			TradeID:    e.TradeID,
			BidOrderID: uint64(e.Bid.OrderID),
			AskOrderID: uint64(e.Ask.OrderID),
			BidPrice:   ticks.FromTicks(e.Bid.Price),
			AskPrice:   ticks.FromTicks(e.Ask.Price),
			Quantity:   int64(e.Quantity()),
			ExecutedAt: e.ExecutedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return result
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrDuplicateOrder):
		WriteError(w, http.StatusConflict, "duplicate_order", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
