package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
	"github.com/TuanThanh1609/leparfurm/internal/usecase"
)

// Recommender is the catalog query surface the handlers need
type Recommender interface {
	Recommend(ctx context.Context, request *domain.MatchRequest) ([]domain.ScoredProduct, error)
	Product(ctx context.Context, id string) (*domain.CanonicalProduct, error)
	Products(ctx context.Context, filter usecase.ProductFilter) ([]domain.CanonicalProduct, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
}

// NewHandler creates a new HTTP handler. A nil recommender makes the
// catalog endpoints answer 503.
func NewHandler(recommender Recommender) *Handler {
	return &Handler{recommender: recommender}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "leparfurm-catalog",
		"version": "1.0.0",
	})
}

// ListProducts returns the catalog, optionally filtered by tag and brand
func (h *Handler) ListProducts(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	products, err := h.recommender.Products(c.Request.Context(), usecase.ProductFilter{
		Tag:   c.Query("tag"),
		Brand: c.Query("brand"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by id
func (h *Handler) GetProduct(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	product, err := h.recommender.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// Match ranks the catalog against a set of quiz answers
func (h *Handler) Match(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var request domain.MatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	results, err := h.recommender.Recommend(c.Request.Context(), &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.recommender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog not configured",
		})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCatalog):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request cancelled"})
	default:
		log.Printf("[HTTP] %s %s (request %s): %v", c.Request.Method, c.Request.URL.Path, requestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
