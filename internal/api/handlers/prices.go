package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-catalog/internal/models"
	"github.com/codyseavey/tcg-catalog/internal/services"
)

const maxPricesPerRequest = 5000

type PriceHandler struct {
	priceWorker  *services.PriceWorker
	priceService *services.PriceService
}

func NewPriceHandler(priceWorker *services.PriceWorker, priceService *services.PriceService) *PriceHandler {
	return &PriceHandler{
		priceWorker:  priceWorker,
		priceService: priceService,
	}
}

// GetPriceStatus returns the state of the price table refresh loop
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.priceWorker.GetStatus())
}

type savePricesRequest struct {
	Prices []models.CardPrice `json:"prices" binding:"required"`
}

// SavePrices upserts price rows and schedules a price table refresh
func (h *PriceHandler) SavePrices(c *gin.Context) {
	prices, ok := bindPrices(c, "")
	if !ok {
		return
	}
	if err := h.priceService.SavePrices(prices); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save prices"})
		return
	}
	h.savedResponse(c, len(prices))
}

// SaveCardPrices upserts the prices of the card named in the path. Any
// card_id in the body is overridden.
func (h *PriceHandler) SaveCardPrices(c *gin.Context) {
	cardID := c.Param("id")
	prices, ok := bindPrices(c, cardID)
	if !ok {
		return
	}
	if err := h.priceService.SaveCardPrices(cardID, prices); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save prices"})
		return
	}
	h.savedResponse(c, len(prices))
}

func (h *PriceHandler) savedResponse(c *gin.Context, saved int) {
	queued := h.priceWorker.RequestRefresh()
	c.JSON(http.StatusOK, gin.H{
		"saved":           saved,
		"refresh_pending": true,
		"refresh_queued":  queued,
	})
}

// bindPrices decodes and validates the request body, answering 400 itself
// on failure. A non-empty cardID is applied to every row.
func bindPrices(c *gin.Context, cardID string) ([]models.CardPrice, bool) {
	var req savePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if len(req.Prices) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one price is required"})
		return nil, false
	}
	if len(req.Prices) > maxPricesPerRequest {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d prices per request", maxPricesPerRequest)})
		return nil, false
	}

	for i := range req.Prices {
		req.Prices[i].ID = 0
		if cardID != "" {
			req.Prices[i].CardID = cardID
		}
		if err := services.ValidatePrice(req.Prices[i]); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
	}
	return req.Prices, true
}
