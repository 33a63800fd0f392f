package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
	"github.com/codyseavey/tcg-catalog/internal/models"
)

const (
	defaultPageSize = 60
	maxPageSize     = 250
	maxSuggestLimit = 20
)

type CardHandler struct {
	engine *catalog.Engine
}

func NewCardHandler(engine *catalog.Engine) *CardHandler {
	return &CardHandler{engine: engine}
}

type cardListResponse struct {
	models.CardSearchResult
	Criteria models.Criteria `json:"criteria"`
}

// ListCards evaluates criteria from the query string. The query string is a
// shareable snapshot of the criteria, so it replaces any previous state; a
// search without an explicit sort is ranked by relevance.
func (h *CardHandler) ListCards(c *gin.Context) {
	query := c.Request.URL.Query()
	if key, ok := unknownListParam(query); ok {
		err := &catalog.InvalidFilterFieldError{Field: models.FilterField(key)}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parsed, err := models.ParseCriteria(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.engine.Ready() {
		notReady(c)
		return
	}

	criteria := catalog.FromQuery(parsed)
	cards, err := h.engine.Query(criteria)
	if err != nil {
		var fieldErr *catalog.InvalidFilterFieldError
		var sortErr *catalog.InvalidSortKeyError
		if errors.As(err, &fieldErr) || errors.As(err, &sortErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Catalog query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query catalog"})
		return
	}

	total := len(cards)
	start := min(offset, total)
	end := min(start+limit, total)

	c.JSON(http.StatusOK, cardListResponse{
		CardSearchResult: models.CardSearchResult{
			Cards:      cards[start:end],
			TotalCount: total,
			HasMore:    end < total,
		},
		Criteria: criteria,
	})
}

var listParams = map[string]bool{"q": true, "sort": true, "order": true, "limit": true, "offset": true}

// unknownListParam returns the first query key that is neither a list
// parameter nor a filter field. A misspelt filter must not widen the result.
func unknownListParam(query url.Values) (string, bool) {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !listParams[k] && !models.FilterField(k).IsValid() {
			return k, true
		}
	}
	return "", false
}

func pageParams(c *gin.Context) (limit, offset int, err error) {
	limit = defaultPageSize
	if s := c.Query("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		limit = min(limit, maxPageSize)
	}
	if s := c.Query("offset"); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

func (h *CardHandler) GetCard(c *gin.Context) {
	id := c.Param("id")

	if !h.engine.Ready() {
		notReady(c)
		return
	}

	card, ok := h.engine.Card(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Suggest returns a handful of autocomplete entries for a partial query
func (h *CardHandler) Suggest(c *gin.Context) {
	query := c.Query("q")

	limit := catalog.DefaultSuggestLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSuggestLimit)
	}

	if !h.engine.Ready() {
		notReady(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": h.engine.Suggest(query, limit)})
}
