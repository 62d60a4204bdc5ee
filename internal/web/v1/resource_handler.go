package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vinculo/crm-service/internal/core/domain"
	"github.com/vinculo/crm-service/internal/core/repository"
	pkgzerolog "github.com/vinculo/crm-service/pkg/logger/zerolog"
)

// ResourceHandler exposes one repository collection over HTTP. C is the
// create payload, P the patch payload; both are bound with gin's JSON
// binding so their validation tags apply.
type ResourceHandler[T any, C any, P any] struct {
	res *repository.Resource[T]
	// filterFields whitelists the query parameters accepted as equality
	// filters on list endpoints.
	filterFields []string
}

// NewResourceHandler creates a handler for the given repository.
func NewResourceHandler[T any, C any, P any](res *repository.Resource[T], filterFields ...string) *ResourceHandler[T, C, P] {
	return &ResourceHandler[T, C, P]{res: res, filterFields: filterFields}
}

// Register mounts the CRUD routes under the given path.
func (h *ResourceHandler[T, C, P]) Register(rg *gin.RouterGroup, path string) {
	rg.GET(path, h.List)
	rg.GET(path+"/:id", h.Get)
	rg.POST(path, h.Create)
	rg.PATCH(path+"/:id", h.Update)
	rg.DELETE(path+"/:id", h.Delete)
}

// List returns matching records. With page or limit query parameters the
// response is a paginated envelope; otherwise the full filtered set is
// returned, optionally ordered via order_by and order=asc|desc.
func (h *ResourceHandler[T, C, P]) List(c *gin.Context) {
	ctx := c.Request.Context()
	filters := h.queryFilters(c)

	if c.Query("page") != "" || c.Query("limit") != "" {
		page := intQuery(c, "page", 1)
		limit := intQuery(c, "limit", 20)

		result, err := h.res.FindPaginated(ctx, page, limit, filters)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	var order *domain.Order
	if field := c.Query("order_by"); field != "" {
		order = &domain.Order{Field: field, Ascending: c.DefaultQuery("order", "asc") != "desc"}
	}

	records, err := h.res.FindAll(ctx, filters, order)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

// Get returns one record by id, 404 when absent.
func (h *ResourceHandler[T, C, P]) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	record, err := h.res.FindByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create inserts one record and returns it as stored.
func (h *ResourceHandler[T, C, P]) Create(c *gin.Context) {
	var payload C
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.res.Create(c.Request.Context(), payload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update applies a partial merge and returns the updated record.
func (h *ResourceHandler[T, C, P]) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.res.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete tombstones the record. The row stays in storage.
func (h *ResourceHandler[T, C, P]) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.res.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResourceHandler[T, C, P]) queryFilters(c *gin.Context) map[string]any {
	filters := map[string]any{}
	for _, field := range h.filterFields {
		if raw, ok := c.GetQuery(field); ok {
			filters[field] = parseFilterValue(raw)
		}
	}
	return filters
}

func (h *ResourceHandler[T, C, P]) writeError(c *gin.Context, err error) {
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var backendErr *repository.BackendError
	if errors.As(err, &backendErr) {
		pkgzerolog.FromContext(c.Request.Context()).Error().Err(err).Msg("Repository operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// parseFilterValue keeps query parameters type-correct for typed columns.
func parseFilterValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
