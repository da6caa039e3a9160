package calendar

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	oracle Oracle
	logger *zap.Logger
}

func NewHandler(oracle Oracle, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("calendar.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.handler")
	}
	return &Handler{oracle: oracle, logger: l}
}

// GetMonth returns the day-by-day working calendar for one month.
func (h *Handler) GetMonth(c *gin.Context) {
	companyID := c.GetString("company_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid month", nil)
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	m, err := h.oracle.HolidayMap(c.Request.Context(), companyID, start, end)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	days := make([]DayInfo, 0, len(m))
	for _, info := range m {
		days = append(days, info)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	response.Success(c, http.StatusOK, days, nil)
}
