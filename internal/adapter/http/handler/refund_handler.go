package handler

import (
	"time"

	"refund-service/internal/adapter/http/dto"
	"refund-service/internal/adapter/http/middleware"
	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"
	"refund-service/pkg/apperror"
	"refund-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// RefundHandler handles the user-facing refund endpoints.
type RefundHandler struct {
	workflow ports.RefundWorkflow
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(workflow ports.RefundWorkflow) *RefundHandler {
	return &RefundHandler{workflow: workflow}
}

// Create handles POST /api/v1/refunds.
func (h *RefundHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	out, err := h.workflow.RequestRefund(c.Request.Context(), ports.RefundCommand{
		UserID:           userID,
		PaymentReference: req.PaymentReference,
		Reason:           req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RefundOutcomeResponse{
		Success:      out.Success,
		AutoRefunded: out.AutoRefunded,
		Message:      out.Message,
		MessageKey:   out.MessageKey,
		Request:      toRefundResponse(out.Request, nil),
		Warnings:     out.Warnings,
	})
}

// ListOwn handles GET /api/v1/refunds.
func (h *RefundHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	reqs, err := h.workflow.ListOwnRequests(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.RefundResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, toRefundResponse(&reqs[i], nil))
	}
	response.OK(c, items)
}

// toRefundResponse converts domain.RefundRequest to DTO.
func toRefundResponse(req *domain.RefundRequest, displayName *string) dto.RefundResponse {
	resp := dto.RefundResponse{
		ID:               req.ID.String(),
		UserID:           req.UserID.String(),
		DisplayName:      displayName,
		PaymentReference: req.PaymentReference,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Reason:           req.Reason,
		Status:           string(req.Status),
		PaymentDate:      req.PaymentDate.UTC().Format(time.RFC3339),
		RequestDate:      req.RequestDate.UTC().Format(time.RFC3339),
		IsWithinPeriod:   req.IsWithinPeriod,
		AdminNotes:       req.AdminNotes,
	}
	if req.ProcessedAt != nil {
		s := req.ProcessedAt.UTC().Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	if req.ProcessedBy != nil {
		s := req.ProcessedBy.String()
		resp.ProcessedBy = &s
	}
	return resp
}
