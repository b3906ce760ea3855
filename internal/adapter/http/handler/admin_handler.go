package handler

import (
	"math"
	"strconv"

	"refund-service/internal/adapter/http/dto"
	"refund-service/internal/adapter/http/middleware"
	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"
	"refund-service/pkg/apperror"
	"refund-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminHandler handles the admin refund review endpoints.
type AdminHandler struct {
	workflow ports.RefundWorkflow
	auth     ports.Authorizer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(workflow ports.RefundWorkflow, auth ports.Authorizer) *AdminHandler {
	return &AdminHandler{workflow: workflow, auth: auth}
}

// List handles GET /api/v1/admin/refunds.
func (h *AdminHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	filter := ports.RefundListFilter{Page: page, PageSize: pageSize}
	if s := c.Query("status"); s != "" {
		status := domain.RefundStatus(s)
		filter.Status = &status
	}

	views, total, err := h.workflow.ListRequests(c.Request.Context(), caller, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.RefundResponse, 0, len(views))
	for i := range views {
		items = append(items, toRefundResponse(&views[i].RefundRequest, views[i].DisplayName))
	}

	response.OK(c, dto.RefundListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}

// Resolve handles POST /api/v1/admin/refunds/:id/resolve.
func (h *AdminHandler) Resolve(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid refund request id"))
		return
	}

	var req dto.ResolveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	out, err := h.workflow.ResolveRequest(c.Request.Context(), caller, ports.ResolveCommand{
		RequestID:  requestID,
		Approve:    *req.Approve,
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ResolveOutcomeResponse{
		Request:  toRefundResponse(out.Request, nil),
		Warnings: out.Warnings,
	})
}

// caller resolves the authenticated user's role and rejects non-admins before
// any input is parsed. It writes the error response itself.
func (h *AdminHandler) caller(c *gin.Context) (ports.Caller, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return ports.Caller{}, false
	}
	caller, err := h.auth.CallerFor(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return ports.Caller{}, false
	}
	if err := h.auth.RequireAdmin(caller); err != nil {
		response.Error(c, err)
		return ports.Caller{}, false
	}
	return caller, true
}
