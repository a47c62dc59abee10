package handler

import (
	"github.com/gin-gonic/gin"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// ActivityHandler serves the tenant's audit trail
type ActivityHandler struct {
	BaseHandler
	service *appledger.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(service *appledger.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// ListActivity lists audit rows, newest first, with an optional action
// search
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = queryInt(c, "page", 1)
	filter.PageSize = queryInt(c, "page_size", 20)
	filter.Search = c.Query("search")

	logs, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}
