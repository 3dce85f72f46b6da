package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/savemoney/brochures/app/config"
	"github.com/savemoney/brochures/app/database"
	"github.com/savemoney/brochures/app/ingest"
	"github.com/savemoney/brochures/app/scrape"
)

func NewHandler(repo database.BrochureRepository, storeCache *config.Cache,
	ingester *ingest.Ingester, sweeper *ingest.Sweeper,
	verifier SessionVerifier, scrapeHour int, version string) *Handler {
	return &Handler{
		repo:       repo,
		storeCache: storeCache,
		ingester:   ingester,
		sweeper:    sweeper,
		verifier:   verifier,
		scrapeHour: scrapeHour,
		version:    version,
	}
}

// GetBrochures lists catalog rows, newest upload first. Archived rows
// are excluded unless archived=true is passed.
func (h *Handler) GetBrochures(c *gin.Context) {
	filter := database.ListFilter{
		Store:           c.Query("store"),
		IncludeArchived: c.Query("archived") == "true" || c.Query("archived") == "1",
	}

	brochures, err := h.repo.List(filter)
	if err != nil {
		slog.Error("Failed to list brochures", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list brochures"})
		return
	}

	responses := make([]BrochureResponse, 0, len(brochures))
	for _, b := range brochures {
		responses = append(responses, newBrochureResponse(b))
	}

	c.JSON(http.StatusOK, gin.H{
		"brochures": responses,
		"total":     len(responses),
	})
}

func (h *Handler) GetBrochureByID(c *gin.Context) {
	id := c.Param("id")

	brochure, err := h.repo.GetByID(id)
	if err != nil {
		slog.Error("Failed to load brochure", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load brochure"})
		return
	}
	if brochure == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brochure not found"})
		return
	}

	c.JSON(http.StatusOK, newBrochureResponse(*brochure))
}

// TriggerScrapeAll runs the full ingestion cycle inline: every enabled
// retailer, sequentially, in configuration order. A retailer's failure
// appears in its entry of the response and does not stop the cycle.
func (h *Handler) TriggerScrapeAll(c *gin.Context) {
	stores := h.storeCache.GetEnabledStores()
	if len(stores) == 0 {
		c.JSON(http.StatusOK, gin.H{"results": []StoreRunResponse{}})
		return
	}

	results := h.ingester.RunAll(c.Request.Context(), stores)

	status := http.StatusOK
	if allFailed(results) {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"results": newStoreRunResponses(results)})
}

// TriggerScrapeStore runs a single retailer's ingestion inline. The
// store's enabled flag is ignored here; an explicit request overrides it.
func (h *Handler) TriggerScrapeStore(c *gin.Context) {
	storeName := c.Param("store")

	store, err := h.storeCache.GetStore(storeName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store config not found"})
		return
	}

	adapter, err := scrape.New(store)
	if err != nil {
		slog.Error("Store has no usable adapter", "store", store.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Store has no usable adapter"})
		return
	}

	summary, err := h.ingester.Run(c.Request.Context(), adapter, store)
	if err != nil {
		slog.Error("Ingestion run failed", "store", store.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingestion run failed",
			"message": err.Error(),
			"summary": summary,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) TriggerSweep(c *gin.Context) {
	result, err := h.sweeper.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		slog.Error("Expiration sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Expiration sweep failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CronDailyScrape is the endpoint external cron services call every
// hour. Outside the configured scrape hour it acknowledges with 204 and
// does nothing; inside it, it runs the full cycle plus the sweep.
func (h *Handler) CronDailyScrape(c *gin.Context) {
	now := time.Now().In(time.Local)
	if now.Hour() != h.scrapeHour {
		c.Status(http.StatusNoContent)
		return
	}

	results := h.ingester.RunAll(c.Request.Context(), h.storeCache.GetEnabledStores())

	sweep, err := h.sweeper.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		slog.Error("Expiration sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Expiration sweep failed",
			"results": newStoreRunResponses(results),
		})
		return
	}

	status := http.StatusOK
	if allFailed(results) {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"results": newStoreRunResponses(results),
		"sweep":   sweep,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	total, err := h.repo.GetBrochureCount()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"stores":    h.storeCache.GetStoreCount(),
		"brochures": total,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	total, err := h.repo.GetBrochureCount()
	if err != nil {
		slog.Error("Failed to count brochures", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
		return
	}

	active, err := h.repo.GetActiveBrochureCount()
	if err != nil {
		slog.Error("Failed to count active brochures", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version":            h.version,
		"store_configs":      h.storeCache.GetStoreCount(),
		"brochures_total":    total,
		"brochures_active":   active,
		"brochures_archived": total - active,
	})
}

// sessionAuthMiddleware guards the read endpoints behind the external
// auth service when one is configured. Without a verifier the catalog
// is public.
func (h *Handler) sessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.verifier == nil {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session token"})
			c.Abort()
			return
		}

		if err := h.verifier.Verify(c.Request.Context(), token); err != nil {
			if errors.Is(err, ErrInvalidSession) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			} else {
				slog.Error("Session verification failed", "error", err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "Session verification unavailable"})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func allFailed(results []ingest.StoreResult) bool {
	for _, r := range results {
		if r.Err == nil {
			return false
		}
	}
	return len(results) > 0
}
