package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmanzanog/leek-tracker/internal/application"
	"github.com/jmanzanog/leek-tracker/internal/domain"
)

// QuoteList is one tracked list: its rows, its code commands and a direct reload.
type QuoteList interface {
	Rows() []domain.Row
	AddCode(ctx context.Context, code string) error
	DeleteCode(ctx context.Context, code string) error
	Reload(ctx context.Context) error
}

// OrderedQuoteList is a QuoteList whose codes can be reordered.
type OrderedQuoteList interface {
	QuoteList
	MoveCodeUp(ctx context.Context, code string) error
	MoveCodeDown(ctx context.Context, code string) error
}

type Scheduler interface {
	Refresh()
	SetVisible(visible bool)
}

type SymbolSearcher interface {
	Search(ctx context.Context, query string) []domain.SymbolSuggestion
}

type EventSource interface {
	Subscribe() (<-chan domain.ListKind, func())
}

type Handler struct {
	funds     QuoteList
	stocks    OrderedQuoteList
	scheduler Scheduler
	symbols   SymbolSearcher
	events    EventSource
}

func NewHandler(funds QuoteList, stocks OrderedQuoteList, scheduler Scheduler, symbols SymbolSearcher, events EventSource) *Handler {
	return &Handler{
		funds:     funds,
		stocks:    stocks,
		scheduler: scheduler,
		symbols:   symbols,
		events:    events,
	}
}

type AddCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func (h *Handler) ListFunds(c *gin.Context) {
	c.JSON(http.StatusOK, h.funds.Rows())
}

func (h *Handler) ListStocks(c *gin.Context) {
	c.JSON(http.StatusOK, h.stocks.Rows())
}

func (h *Handler) AddFund(c *gin.Context) {
	h.addCode(c, domain.ListKindFund, h.funds)
}

func (h *Handler) AddStock(c *gin.Context) {
	h.addCode(c, domain.ListKindStock, h.stocks)
}

func (h *Handler) DeleteFund(c *gin.Context) {
	h.command(c, domain.ListKindFund, h.funds, h.funds.DeleteCode)
}

func (h *Handler) DeleteStock(c *gin.Context) {
	h.command(c, domain.ListKindStock, h.stocks, h.stocks.DeleteCode)
}

func (h *Handler) MoveStockUp(c *gin.Context) {
	h.command(c, domain.ListKindStock, h.stocks, h.stocks.MoveCodeUp)
}

func (h *Handler) MoveStockDown(c *gin.Context) {
	h.command(c, domain.ListKindStock, h.stocks, h.stocks.MoveCodeDown)
}

func (h *Handler) addCode(c *gin.Context, kind domain.ListKind, list QuoteList) {
	var req AddCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := list.AddCode(c.Request.Context(), req.Code); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to add code", "kind", kind, "code", req.Code, "error", err)
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	h.scheduler.Refresh()
	c.JSON(http.StatusCreated, list.Rows())
}

func (h *Handler) command(c *gin.Context, kind domain.ListKind, list QuoteList, run func(ctx context.Context, code string) error) {
	code := c.Param("code")

	if err := run(c.Request.Context(), code); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to update code list", "kind", kind, "code", code, "error", err)
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	h.scheduler.Refresh()
	c.JSON(http.StatusOK, list.Rows())
}

// RefreshAll requests a debounced reload of both lists.
func (h *Handler) RefreshAll(c *gin.Context) {
	h.scheduler.Refresh()
	c.JSON(http.StatusAccepted, StatusResponse{Status: "refresh scheduled"})
}

func (h *Handler) RefreshFunds(c *gin.Context) {
	h.reload(c, domain.ListKindFund, h.funds)
}

func (h *Handler) RefreshStocks(c *gin.Context) {
	h.reload(c, domain.ListKindStock, h.stocks)
}

func (h *Handler) reload(c *gin.Context, kind domain.ListKind, list QuoteList) {
	if err := list.Reload(c.Request.Context()); err != nil {
		if errors.Is(err, application.ErrReloadInProgress) {
			c.JSON(http.StatusAccepted, StatusResponse{Status: err.Error()})
			return
		}
		slog.ErrorContext(c.Request.Context(), "Failed to reload quotes", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, list.Rows())
}

func (h *Handler) SetVisibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.scheduler.SetVisible(*req.Visible)
	c.Status(http.StatusNoContent)
}

func (h *Handler) SuggestStocks(c *gin.Context) {
	c.JSON(http.StatusOK, h.symbols.Search(c.Request.Context(), c.Query("q")))
}

// Events streams one "changed" event per data-changed notification.
func (h *Handler) Events(c *gin.Context) {
	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case kind, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("changed", string(kind))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateCode):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
