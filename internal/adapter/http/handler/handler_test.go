package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"refund-service/internal/adapter/http/dto"
	"refund-service/internal/adapter/http/middleware"
	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"
	"refund-service/internal/core/ports/mocks"
	"refund-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, target string, body any, userID *uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != nil {
		c.Set(middleware.CtxUserID, *userID)
	}
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func sampleRequest(userID uuid.UUID, status domain.RefundStatus) *domain.RefundRequest {
	paid := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	return &domain.RefundRequest{
		ID:               uuid.New(),
		UserID:           userID,
		PaymentReference: "ORDER-1",
		Amount:           149000,
		Currency:         "IDR",
		Status:           status,
		PaymentDate:      paid,
		RequestDate:      paid.Add(48 * time.Hour),
		IsWithinPeriod:   status != domain.RefundStatusPending,
	}
}

// --- Refund Handler Tests ---

func TestCreateRefund_AutoRefunded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	h := NewRefundHandler(wf)

	userID := uuid.New()
	req := sampleRequest(userID, domain.RefundStatusAutoRefunded)

	wf.EXPECT().RequestRefund(gomock.Any(), ports.RefundCommand{
		UserID:           userID,
		PaymentReference: "ORDER-1",
	}).Return(&ports.RefundOutcome{
		Success:      true,
		AutoRefunded: true,
		MessageKey:   "refund.auto_refunded",
		Message:      "Your payment has been refunded",
		Request:      req,
	}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/refunds", dto.CreateRefundRequest{PaymentReference: "ORDER-1"}, &userID)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["auto_refunded"])
	assert.Equal(t, "refund.auto_refunded", data["message_key"])
	request := data["request"].(map[string]interface{})
	assert.Equal(t, req.ID.String(), request["id"])
	assert.Equal(t, "auto_refunded", request["status"])
	assert.Equal(t, "2026-03-10T01:30:00Z", request["payment_date"])
	assert.NotContains(t, data, "warnings")
}

func TestCreateRefund_SanitizesInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	h := NewRefundHandler(wf)
	userID := uuid.New()

	wf.EXPECT().RequestRefund(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd ports.RefundCommand) (*ports.RefundOutcome, error) {
			require.NotNil(t, cmd.Reason)
			assert.Equal(t, "changed my mind", *cmd.Reason)
			return &ports.RefundOutcome{Success: true, Request: sampleRequest(userID, domain.RefundStatusPending)}, nil
		})

	reason := "  changed my mind\x00 "
	c, w := newContext(http.MethodPost, "/api/v1/refunds",
		dto.CreateRefundRequest{PaymentReference: "ORDER-1", Reason: &reason}, &userID)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateRefund_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewRefundHandler(mocks.NewMockRefundWorkflow(ctrl))
	userID := uuid.New()

	tests := []struct {
		name string
		body any
	}{
		{"empty body", map[string]any{}},
		{"unsafe reference", dto.CreateRefundRequest{PaymentReference: "ORDER 1; DROP"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newContext(http.MethodPost, "/api/v1/refunds", tc.body, &userID)
			h.Create(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
		})
	}
}

func TestCreateRefund_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewRefundHandler(mocks.NewMockRefundWorkflow(ctrl))
	c, w := newContext(http.MethodPost, "/api/v1/refunds", dto.CreateRefundRequest{PaymentReference: "ORDER-1"}, nil)
	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRefund_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"duplicate", apperror.ErrDuplicateRequest("pending"), http.StatusConflict, apperror.CodeDuplicateRequest},
		{"not owner", apperror.ErrNotAuthorized(), http.StatusForbidden, apperror.CodeNotAuthorized},
		{"gateway", apperror.ErrGateway(errors.New("timeout")), http.StatusBadGateway, apperror.CodeGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apperror.CodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			wf := mocks.NewMockRefundWorkflow(ctrl)
			h := NewRefundHandler(wf)
			userID := uuid.New()

			wf.EXPECT().RequestRefund(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			c, w := newContext(http.MethodPost, "/api/v1/refunds", dto.CreateRefundRequest{PaymentReference: "ORDER-1"}, &userID)
			h.Create(c)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantErr, errorCode(t, w))
		})
	}
}

func TestListOwnRefunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	h := NewRefundHandler(wf)
	userID := uuid.New()

	wf.EXPECT().ListOwnRequests(gomock.Any(), userID).Return([]domain.RefundRequest{
		*sampleRequest(userID, domain.RefundStatusPending),
		*sampleRequest(userID, domain.RefundStatusRejected),
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/refunds", nil, &userID)
	h.ListOwn(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	assert.Len(t, items, 2)
}

func TestListOwnRefunds_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	h := NewRefundHandler(wf)
	userID := uuid.New()

	wf.EXPECT().ListOwnRequests(gomock.Any(), userID).Return(nil, nil)

	c, w := newContext(http.MethodGet, "/api/v1/refunds", nil, &userID)
	h.ListOwn(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

// --- Admin Handler Tests ---

func TestAdminList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(wf, auth)

	adminID := uuid.New()
	caller := ports.Caller{UserID: adminID, Role: domain.RoleAdmin}
	name := "Budi"
	pending := domain.RefundStatusPending

	auth.EXPECT().CallerFor(gomock.Any(), adminID).Return(caller, nil)
	auth.EXPECT().RequireAdmin(caller).Return(nil)
	wf.EXPECT().ListRequests(gomock.Any(), caller, ports.RefundListFilter{Status: &pending, Page: 2, PageSize: 10}).
		Return([]ports.RefundView{{RefundRequest: *sampleRequest(uuid.New(), pending), DisplayName: &name}}, int64(11), nil)

	c, w := newContext(http.MethodGet, "/api/v1/admin/refunds?status=pending&page=2&page_size=10", nil, &adminID)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(11), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Budi", items[0].(map[string]interface{})["display_name"])
}

func TestAdminList_DefaultPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(wf, auth)
	adminID := uuid.New()
	caller := ports.Caller{UserID: adminID, Role: domain.RoleOwner}

	auth.EXPECT().CallerFor(gomock.Any(), adminID).Return(caller, nil)
	auth.EXPECT().RequireAdmin(caller).Return(nil)
	wf.EXPECT().ListRequests(gomock.Any(), caller, ports.RefundListFilter{Page: 1, PageSize: 20}).
		Return(nil, int64(0), nil)

	c, w := newContext(http.MethodGet, "/api/v1/admin/refunds?page=0&page_size=500", nil, &adminID)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(0), data["total_pages"])
}

func TestAdminList_Forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(wf, auth)
	userID := uuid.New()
	caller := ports.Caller{UserID: userID, Role: domain.RoleUser}

	auth.EXPECT().CallerFor(gomock.Any(), userID).Return(caller, nil)
	auth.EXPECT().RequireAdmin(caller).Return(apperror.ErrForbidden())

	c, w := newContext(http.MethodGet, "/api/v1/admin/refunds", nil, &userID)
	h.List(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, errorCode(t, w))
}

func TestAdminList_RoleLookupFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(mocks.NewMockRefundWorkflow(ctrl), auth)
	userID := uuid.New()

	auth.EXPECT().CallerFor(gomock.Any(), userID).Return(ports.Caller{}, apperror.InternalError(errors.New("db down")))

	c, w := newContext(http.MethodGet, "/api/v1/admin/refunds", nil, &userID)
	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminResolve_Approve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(wf, auth)

	adminID := uuid.New()
	caller := ports.Caller{UserID: adminID, Role: domain.RoleAdmin}
	resolved := sampleRequest(uuid.New(), domain.RefundStatusApproved)
	processedAt := time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)
	resolved.ProcessedAt = &processedAt
	resolved.ProcessedBy = &adminID

	auth.EXPECT().CallerFor(gomock.Any(), adminID).Return(caller, nil)
	auth.EXPECT().RequireAdmin(caller).Return(nil)
	wf.EXPECT().ResolveRequest(gomock.Any(), caller, ports.ResolveCommand{RequestID: resolved.ID, Approve: true}).
		Return(&ports.ResolveOutcome{
			Request: resolved,
			Warnings: []domain.CompensationWarning{
				{Step: domain.StepCancelSubscription, Message: "Subscription cancellation will be retried"},
			},
		}, nil)

	approve := true
	c, w := newContext(http.MethodPost, "/api/v1/admin/refunds/"+resolved.ID.String()+"/resolve",
		dto.ResolveRefundRequest{Approve: &approve}, &adminID)
	c.Params = gin.Params{{Key: "id", Value: resolved.ID.String()}}
	h.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	request := data["request"].(map[string]interface{})
	assert.Equal(t, "approved", request["status"])
	assert.Equal(t, adminID.String(), request["processed_by"])
	assert.Equal(t, "2026-03-21T09:00:00Z", request["processed_at"])
	assert.Len(t, data["warnings"], 1)
}

func TestAdminResolve_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(mocks.NewMockRefundWorkflow(ctrl), auth)
	adminID := uuid.New()

	auth.EXPECT().CallerFor(gomock.Any(), adminID).Return(ports.Caller{UserID: adminID, Role: domain.RoleAdmin}, nil)
	auth.EXPECT().RequireAdmin(gomock.Any()).Return(nil)

	approve := false
	c, w := newContext(http.MethodPost, "/api/v1/admin/refunds/abc/resolve", dto.ResolveRefundRequest{Approve: &approve}, &adminID)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Resolve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
}

func TestAdminResolve_MissingDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(mocks.NewMockRefundWorkflow(ctrl), auth)
	adminID := uuid.New()
	id := uuid.New()

	auth.EXPECT().CallerFor(gomock.Any(), adminID).Return(ports.Caller{UserID: adminID, Role: domain.RoleAdmin}, nil)
	auth.EXPECT().RequireAdmin(gomock.Any()).Return(nil)

	c, w := newContext(http.MethodPost, "/api/v1/admin/refunds/"+id.String()+"/resolve",
		map[string]any{"admin_notes": "ok"}, &adminID)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Resolve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminResolve_AlreadyResolved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wf := mocks.NewMockRefundWorkflow(ctrl)
	auth := mocks.NewMockAuthorizer(ctrl)
	h := NewAdminHandler(wf, auth)
	adminID := uuid.New()
	id := uuid.New()
	caller := ports.Caller{UserID: adminID, Role: domain.RoleAdmin}

	auth.EXPECT().CallerFor(gomock.Any(), adminID).Return(caller, nil)
	auth.EXPECT().RequireAdmin(caller).Return(nil)
	wf.EXPECT().ResolveRequest(gomock.Any(), caller, gomock.Any()).Return(nil, apperror.ErrAlreadyResolved("rejected"))

	notes := "Outside policy"
	approve := false
	c, w := newContext(http.MethodPost, "/api/v1/admin/refunds/"+id.String()+"/resolve",
		dto.ResolveRefundRequest{Approve: &approve, AdminNotes: &notes}, &adminID)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Resolve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)
}

func TestAdminResolve_UserRoleForbiddenBeforeValidation(t *testing.T) {
	tests := []struct {
		name string
		id   string
		body any
	}{
		{"malformed id", "abc", map[string]any{"approve": true}},
		{"missing decision", uuid.NewString(), map[string]any{"admin_notes": "ok"}},
		{"valid request", uuid.NewString(), map[string]any{"approve": true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			auth := mocks.NewMockAuthorizer(ctrl)
			h := NewAdminHandler(mocks.NewMockRefundWorkflow(ctrl), auth)
			userID := uuid.New()
			caller := ports.Caller{UserID: userID, Role: domain.RoleUser}

			auth.EXPECT().CallerFor(gomock.Any(), userID).Return(caller, nil)
			auth.EXPECT().RequireAdmin(caller).Return(apperror.ErrForbidden())

			c, w := newContext(http.MethodPost, "/api/v1/admin/refunds/"+tc.id+"/resolve", tc.body, &userID)
			c.Params = gin.Params{{Key: "id", Value: tc.id}}
			h.Resolve(c)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, apperror.CodeForbidden, errorCode(t, w))
		})
	}
}

// --- Health Check Test ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "nats", err: errors.New("no servers")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	assert.Equal(t, "unhealthy", deps["nats"].(map[string]interface{})["status"])
}

// --- Swagger Tests ---

func TestSwaggerUI(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger", nil)

	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "swagger-ui")
	assert.Contains(t, w.Body.String(), "/swagger/spec")
}

func TestSwaggerSpec_Loaded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec([]byte("openapi: '3.0.0'\ninfo:\n  title: Test"))(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, w.Body.String(), "openapi")
}

func TestSwaggerSpec_NotLoaded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(nil)(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Router Tests ---

func TestSetupRouter_RequiresToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := mocks.NewMockTokenService(ctrl)
	r := SetupRouter(RouterDeps{
		Workflow:   mocks.NewMockRefundWorkflow(ctrl),
		Authorizer: mocks.NewMockAuthorizer(ctrl),
		TokenSvc:   tokens,
	})

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/refunds"},
		{http.MethodGet, "/api/v1/refunds"},
		{http.MethodGet, "/api/v1/admin/refunds"},
		{http.MethodPost, "/api/v1/admin/refunds/" + uuid.NewString() + "/resolve"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	}
}

func TestSetupRouter_ListOwn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := mocks.NewMockTokenService(ctrl)
	wf := mocks.NewMockRefundWorkflow(ctrl)
	r := SetupRouter(RouterDeps{Workflow: wf, Authorizer: mocks.NewMockAuthorizer(ctrl), TokenSvc: tokens})

	userID := uuid.New()
	tokens.EXPECT().Validate("good").Return(&ports.TokenClaims{UserID: userID}, nil)
	wf.EXPECT().ListOwnRequests(gomock.Any(), userID).Return([]domain.RefundRequest{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/refunds", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
