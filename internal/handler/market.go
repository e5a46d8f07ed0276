package handler

import (
	"net/http"
	"strconv"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/service"
)

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// levelResponse is one aggregated price level in the book response.
type levelResponse struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// bookResponse is the JSON response for GET /book, best levels first.
type bookResponse struct {
	Bids []levelResponse `json:"bids"`
	Asks []levelResponse `json:"asks"`
}

// priceResponse is the JSON response for GET /price. Last and VWAP are
// null until something trades.
type priceResponse struct {
	Last *string `json:"last"`
	VWAP *string `json:"vwap"`
}

// GetBook handles GET /book. The optional depth query parameter caps the
// number of levels per side.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	depth, ok := parseCountParam(w, r, "depth")
	if !ok {
		return
	}

	snap := h.marketSvc.Depth(depth)
	WriteJSON(w, http.StatusOK, bookResponse{
		Bids: buildLevelResponses(snap.Bids, h.marketSvc.Converter()),
		Asks: buildLevelResponses(snap.Asks, h.marketSvc.Converter()),
	})
}

// GetTrades handles GET /trades. The optional limit query parameter caps
// the number of executions returned, newest last.
func (h *MarketHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseCountParam(w, r, "limit")
	if !ok {
		return
	}
	if limit == 0 {
		limit = 100
	}

	executions := h.marketSvc.RecentTrades(limit)
	WriteJSON(w, http.StatusOK, map[string]any{
		"trades": buildExecutionResponses(executions, h.marketSvc.Converter()),
	})
}

// GetPrice handles GET /price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	var resp priceResponse
	if last, ok := h.marketSvc.LastPrice(); ok {
		s := h.marketSvc.Converter().FromTicks(last)
		resp.Last = &s
	}
	if vwap, ok := h.marketSvc.VWAP(); ok {
		s := vwap.String()
		resp.VWAP = &s
	}
	WriteJSON(w, http.StatusOK, resp)
}

// parseCountParam reads a non-negative integer query parameter, defaulting
// to zero when absent.
func parseCountParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		WriteError(w, http.StatusBadRequest, "invalid_request", name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func buildLevelResponses(levels []domain.LevelInfo, ticks service.TickConverter) []levelResponse {
	result := make([]levelResponse, len(levels))
	for i, l := range levels {
		result[i] = levelResponse{
			Price:    ticks.FromTicks(l.Price),
			Quantity: int64(l.Quantity),
		}
	}
	return result
}
