package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
	"github.com/codyseavey/tcg-catalog/internal/models"
)

type CatalogHandler struct {
	engine *catalog.Engine
}

func NewCatalogHandler(engine *catalog.Engine) *CatalogHandler {
	return &CatalogHandler{engine: engine}
}

type CatalogStatus struct {
	Ready        bool      `json:"ready"`
	SnapshotID   string    `json:"snapshot_id,omitempty"`
	Cards        int       `json:"cards"`
	Sets         int       `json:"sets"`
	LoadedAt     time.Time `json:"loaded_at,omitempty"`
	PriceVersion uint64    `json:"price_version"`
	PricedCards  int       `json:"priced_cards"`
	SortKeys     []string  `json:"sort_keys"`
	DefaultSort  string    `json:"default_sort"`
	DefaultOrder string    `json:"default_order"`
}

// GetStatus reports whether a catalog is loaded and what it contains
func (h *CatalogHandler) GetStatus(c *gin.Context) {
	status := CatalogStatus{
		Ready:        h.engine.Ready(),
		DefaultSort:  string(models.DefaultSortBy),
		DefaultOrder: string(models.DefaultSortOrder),
	}
	for _, k := range models.AllSortKeys() {
		status.SortKeys = append(status.SortKeys, string(k))
	}
	if cat := h.engine.Catalog(); cat != nil {
		status.SnapshotID = cat.ID.String()
		status.Cards = cat.Len()
		status.Sets = cat.Lookups.Sets.Len()
		status.LoadedAt = cat.LoadedAt
	}
	if prices := h.engine.Prices(); prices != nil {
		status.PriceVersion = prices.Version
		status.PricedCards = prices.Len()
	}
	c.JSON(http.StatusOK, status)
}

// GetFilterOptions lists the selectable values of every filter field
func (h *CatalogHandler) GetFilterOptions(c *gin.Context) {
	cat := h.engine.Catalog()
	if cat == nil {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": cat.FilterOptions()})
}

func notReady(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": catalog.ErrIndexNotReady.Error()})
}
