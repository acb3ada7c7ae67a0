package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hirewire/hirewire/internal/service"
	"github.com/hirewire/hirewire/pkg/response"
)

type SearchHandler struct {
	service service.SearchService
}

func NewSearchHandler(svc service.SearchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

func (h *SearchHandler) Jobs(c *gin.Context) {
	h.search(c, h.service.SearchJobs)
}

func (h *SearchHandler) Candidates(c *gin.Context) {
	h.search(c, h.service.SearchCandidates)
}

func (h *SearchHandler) search(c *gin.Context, fn func(query string, limit int64) ([]map[string]interface{}, error)) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := int64(20)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	results, err := fn(query, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}
