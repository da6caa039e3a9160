package leaverequest

import (
	"net/http"

	"go-timeoff/internal/domain"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leaverequest.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.GetString("employee_id")

	var req CreateLeaveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), companyID, employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetByID(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// List returns the caller's own requests, or the whole company for
// admin-tier callers when no employee filter narrows it.
func (h *Handler) List(c *gin.Context) {
	companyID := c.GetString("company_id")
	role := c.GetString("role")
	employeeID := c.Query("employee_id")

	if employeeID == "" && domain.IsAdminTier(role) {
		resp, err := h.service.ListByCompany(c.Request.Context(), companyID)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		meta := response.NewPaginationMeta(int64(len(resp)), 1, len(resp))
		response.Success(c, http.StatusOK, resp, &meta)
		return
	}

	if employeeID == "" {
		employeeID = c.GetString("employee_id")
	}
	if employeeID != c.GetString("employee_id") && !domain.IsAdminTier(role) {
		response.Error(c, http.StatusForbidden, apperror.CodeForbidden, apperror.ErrForbidden.Message, nil)
		return
	}

	resp, err := h.service.ListByEmployee(c.Request.Context(), companyID, employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	h.review(c, ActionApprove)
}

func (h *Handler) Reject(c *gin.Context) {
	h.review(c, ActionReject)
}

func (h *Handler) review(c *gin.Context, action string) {
	companyID := c.GetString("company_id")
	approverID := c.GetString("employee_id")
	role := c.GetString("role")

	var req ReviewLeaveRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}

	resp, err := h.service.Review(c.Request.Context(), companyID, c.Param("id"), approverID, role, action, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) BulkReview(c *gin.Context) {
	companyID := c.GetString("company_id")
	approverID := c.GetString("employee_id")
	role := c.GetString("role")

	var req BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.BulkReview(c.Request.Context(), companyID, approverID, role, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
