package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/domain/models"
	"github.com/shankarelec/stocktrack/internal/export/sheets"
	"github.com/shankarelec/stocktrack/internal/service/sales"
	"github.com/shankarelec/stocktrack/internal/service/stock"
	"github.com/shankarelec/stocktrack/internal/service/views"
	"github.com/shankarelec/stocktrack/pkg/dates"
)

// InventoryHandler adapts the stock, views and sales services to HTTP.
type InventoryHandler struct {
	store      *stock.Store
	projector  *views.Projector
	aggregator *sales.Aggregator
	exporter   sheets.Exporter
	loc        *time.Location
	logger     *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter. exporter may be
// nil when workbook export is not configured.
func NewInventoryHandler(store *stock.Store, projector *views.Projector, aggregator *sales.Aggregator, exporter sheets.Exporter, loc *time.Location, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryHandler{
		store:      store,
		projector:  projector,
		aggregator: aggregator,
		exporter:   exporter,
		loc:        loc,
		logger:     logger,
	}
}

type createUnitRequest struct {
	Model        string `json:"model"`
	Variant      string `json:"variant"`
	IMEI         string `json:"imei"`
	Quantity     int    `json:"quantity"`
	PurchaseDate string `json:"purchaseDate"`
}

// Create registers a new unit in the IN_STOCK state.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var purchaseDate time.Time
	if req.PurchaseDate != "" {
		parsed, err := dates.Parse(req.PurchaseDate, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "purchaseDate must be formatted as " + dates.Layout})
			return
		}
		purchaseDate = parsed
	}

	id, err := h.store.Create(c.Request.Context(), stock.CreateUnitInput{
		Model:        req.Model,
		Variant:      req.Variant,
		IMEI:         req.IMEI,
		Quantity:     req.Quantity,
		PurchaseDate: purchaseDate,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type actionRequest struct {
	Date string `json:"date"`
}

// Sell transitions the unit to SOLD on the caller-chosen date.
func (h *InventoryHandler) Sell(c *gin.Context) {
	h.transition(c, h.store.MarkSold)
}

// Return transitions the unit to RETURNED on the caller-chosen date.
func (h *InventoryHandler) Return(c *gin.Context) {
	h.transition(c, h.store.MarkReturned)
}

func (h *InventoryHandler) transition(c *gin.Context, apply func(context.Context, string, time.Time) error) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid action payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := dates.Parse(req.Date, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as " + dates.Layout})
			return
		}
		date = parsed
	}

	if err := apply(c.Request.Context(), c.Param("id"), date); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List serves the requested stock view, filtered by the optional search
// term. The current view is age-sorted and carries days-in-stock figures.
func (h *InventoryHandler) List(c *gin.Context) {
	stockViews := h.projector.Project(h.store.Snapshot())
	term := c.Query("q")

	switch view := c.DefaultQuery("view", "current"); view {
	case "current":
		units := h.projector.SortedByAge(h.projector.Search(stockViews.Current, term))
		c.JSON(http.StatusOK, gin.H{"view": view, "units": units, "count": len(units)})
	case "sold", "returned", "history":
		var source []models.InventoryUnit
		switch view {
		case "sold":
			source = stockViews.Sold
		case "returned":
			source = stockViews.Returned
		default:
			source = stockViews.History
		}
		units := h.projector.Search(source, term)
		c.JSON(http.StatusOK, gin.H{"view": view, "units": units, "count": len(units)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be one of current, sold, returned, history"})
	}
}

// Sales serves the dashboard counts and the unit list for the selected
// reporting window.
func (h *InventoryHandler) Sales(c *gin.Context) {
	window, err := sales.ParseWindow(c.DefaultQuery("window", string(sales.WindowToday)))
	if err != nil {
		h.renderError(c, err)
		return
	}

	report := h.aggregator.Aggregate(h.projector.Project(h.store.Snapshot()).Sold)

	units, err := report.Select(window)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"window": window,
		"units":  units,
		"counts": report.Counts(),
	})
}

// Export rewrites the configured workbook from the current snapshot.
func (h *InventoryHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workbook export is not configured"})
		return
	}

	stockViews := h.projector.Project(h.store.Snapshot())
	if err := h.exporter.ExportWorkbook(c.Request.Context(), stockViews); err != nil {
		h.logger.Error("workbook export failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "export failed"})
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *InventoryHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, sales.ErrUnknownWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnitFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrPersistence):
		h.logger.Error("persistence failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "persistence failure"})
	default:
		h.logger.Error("unexpected failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
