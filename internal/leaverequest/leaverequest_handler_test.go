package leaverequest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-timeoff/internal/leaverequest"
	leaverequesterrors "go-timeoff/internal/leaverequest/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeRequestService struct {
	createFn         func(ctx context.Context, companyID, employeeID string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error)
	getByIDFn        func(ctx context.Context, companyID, id string) (*leaverequest.LeaveRequestResponse, error)
	listByCompanyFn  func(ctx context.Context, companyID string) ([]leaverequest.LeaveRequestResponse, error)
	listByEmployeeFn func(ctx context.Context, companyID, employeeID string) ([]leaverequest.LeaveRequestResponse, error)
	reviewFn         func(ctx context.Context, companyID, requestID, approverID, role, action string, req leaverequest.ReviewLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error)
	bulkReviewFn     func(ctx context.Context, companyID, approverID, role string, req leaverequest.BulkReviewRequest) (*leaverequest.BulkReviewResponse, error)
}

func (f *fakeRequestService) Create(ctx context.Context, companyID, employeeID string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
	return f.createFn(ctx, companyID, employeeID, req)
}

func (f *fakeRequestService) GetByID(ctx context.Context, companyID, id string) (*leaverequest.LeaveRequestResponse, error) {
	return f.getByIDFn(ctx, companyID, id)
}

func (f *fakeRequestService) ListByCompany(ctx context.Context, companyID string) ([]leaverequest.LeaveRequestResponse, error) {
	return f.listByCompanyFn(ctx, companyID)
}

func (f *fakeRequestService) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]leaverequest.LeaveRequestResponse, error) {
	return f.listByEmployeeFn(ctx, companyID, employeeID)
}

func (f *fakeRequestService) Review(ctx context.Context, companyID, requestID, approverID, role, action string, req leaverequest.ReviewLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
	return f.reviewFn(ctx, companyID, requestID, approverID, role, action, req)
}

func (f *fakeRequestService) BulkReview(ctx context.Context, companyID, approverID, role string, req leaverequest.BulkReviewRequest) (*leaverequest.BulkReviewResponse, error) {
	return f.bulkReviewFn(ctx, companyID, approverID, role, req)
}

func TestLeaveRequestHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		employeeID := uuid.New().String()
		leaveTypeID := uuid.New().String()

		svc := &fakeRequestService{
			createFn: func(ctx context.Context, cid, eid string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, leaveTypeID, req.LeaveTypeID)
				return &leaverequest.LeaveRequestResponse{
					ID:           uuid.New().String(),
					CompanyID:    cid,
					EmployeeID:   eid,
					LeaveTypeID:  req.LeaveTypeID,
					StartDate:    req.StartDate,
					EndDate:      req.EndDate,
					DurationType: leaverequest.DurationFullDay,
					Hours:        16,
					Status:       leaverequest.StatusPending,
				}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type_id":"` + leaveTypeID + `","start_date":"2026-03-02","end_date":"2026-03-03"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Set("employee_id", employeeID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var resp leaverequest.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.Equal(t, 16.0, resp.Hours)
	})

	t.Run("negative service error surfaces status and code", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, cid, eid string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
				return nil, leaverequesterrors.ErrOverlappingRequest
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type_id":"` + uuid.NewString() + `","start_date":"2026-03-02","end_date":"2026-03-03"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.NewString())
		c.Set("employee_id", uuid.NewString())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, leaverequesterrors.ErrOverlappingRequest.Message, env.Error.Message)
	})

	t.Run("negative malformed body fails validation", func(t *testing.T) {
		svc := &fakeRequestService{}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{"start_date":"2026-03-02"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.NewString())
		c.Set("employee_id", uuid.NewString())

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeaveRequestHandler_BulkReview(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success returns the skip report", func(t *testing.T) {
		updatedID := uuid.New().String()
		skippedID := uuid.New().String()

		svc := &fakeRequestService{
			bulkReviewFn: func(ctx context.Context, cid, aid, role string, req leaverequest.BulkReviewRequest) (*leaverequest.BulkReviewResponse, error) {
				assert.Equal(t, leaverequest.ActionApprove, req.Action)
				return &leaverequest.BulkReviewResponse{
					UpdatedCount:        1,
					UpdatedRequestIDs:   []string{updatedID},
					EvaluatedRequestIDs: []string{updatedID, skippedID},
					Skipped: []leaverequest.SkippedRequest{
						{ID: skippedID, State: leaverequest.StatusRejected},
					},
				}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"action":"approve","request_ids":["` + updatedID + `","` + skippedID + `"]}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/bulk-review", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.NewString())
		c.Set("employee_id", uuid.NewString())
		c.Set("role", "admin")

		h.BulkReview(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var resp leaverequest.BulkReviewResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, 1, resp.UpdatedCount)
		assert.Len(t, resp.Skipped, 1)
		assert.Equal(t, skippedID, resp.Skipped[0].ID)
	})
}
