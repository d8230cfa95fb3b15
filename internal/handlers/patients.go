package handlers

import (
	"net/http"
	"strconv"

	"cleverheal-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetPatientsWithPage lists patient records page by page. Doctors only see
// patients who booked with them.
func (h *Handler) GetPatientsWithPage(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("page_size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	result, err := h.Patients.List(c.Request.Context(), currentSession(c), repository.PatientQuery{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.DefaultQuery("sort_by", "id"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
		Search:    c.Query("search"),
	})
	if err != nil {
		h.respondError(c, err, "Error fetching paginated patients")
		return
	}
	c.JSON(http.StatusOK, result)
}
