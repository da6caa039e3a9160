package leaverequesterrors

import (
	"fmt"
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

// HolidayInRange names the offending non-working date.
func HolidayInRange(date string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("%s is not a working day", date),
		http.StatusBadRequest,
	)
}

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrHalfDayRange = apperror.New(
		apperror.CodeInvalidInput,
		"a half-day request must span exactly one working day",
		http.StatusBadRequest,
	)
	ErrHalfDaySegmentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"half_day_segment is required for half-day requests",
		http.StatusBadRequest,
	)
	ErrUnexpectedSegment = apperror.New(
		apperror.CodeInvalidInput,
		"half_day_segment is only valid for half-day requests",
		http.StatusBadRequest,
	)
	ErrHoursOutOfRange = apperror.New(
		apperror.CodeInvalidInput,
		"requested hours must be positive and within the working hours of the range",
		http.StatusBadRequest,
	)
	ErrMaxPerRequestExceeded = apperror.New(
		apperror.CodeInvalidInput,
		"requested hours exceed the per-request limit for this leave type",
		http.StatusBadRequest,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeConflict,
		"an existing pending or approved request overlaps this period",
		http.StatusConflict,
	)
	ErrNotAuthorizedToReview = apperror.New(
		apperror.CodeForbidden,
		"only the employee's manager or an admin can review this request",
		http.StatusForbidden,
	)
	ErrInvalidStateTransition = apperror.New(
		apperror.CodeInvalidState,
		"the request is not in a reviewable state for this action",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrEmptySelector = apperror.New(
		apperror.CodeInvalidInput,
		"bulk review requires request_ids or employee_id with year and month",
		http.StatusBadRequest,
	)
	ErrNoRequestsMatched = apperror.New(
		apperror.CodeNotFound,
		"no leave requests matched the selector",
		http.StatusNotFound,
	)
	ErrNoneEligible = apperror.New(
		apperror.CodeInvalidState,
		"none of the matched requests are in an eligible state for this action",
		http.StatusBadRequest,
	)
	ErrApproverNotFound = apperror.New(
		apperror.CodeNotFound,
		"approver not found in this company",
		http.StatusNotFound,
	)
)
