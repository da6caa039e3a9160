package compofferrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrCreditNotFound = apperror.New(
		apperror.CodeNotFound,
		"comp-off credit not found",
		http.StatusNotFound,
	)
	ErrCreditNotGranted = apperror.New(
		apperror.CodeInvalidState,
		"only a granted credit can be revoked",
		http.StatusBadRequest,
	)
	ErrInvalidWorkDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid work_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrFutureWorkDate = apperror.New(
		apperror.CodeInvalidInput,
		"work_date must not be in the future",
		http.StatusBadRequest,
	)
	ErrWorkingDay = apperror.New(
		apperror.CodeInvalidInput,
		"comp-off can only be granted for a non-working day",
		http.StatusBadRequest,
	)
	ErrNoTimesheetEntry = apperror.New(
		apperror.CodeInvalidInput,
		"no timesheet entry exists for this date",
		http.StatusBadRequest,
	)
	ErrInsufficientWorkedHours = apperror.New(
		apperror.CodeInvalidInput,
		"the timesheet entry records fewer hours than the requested credit",
		http.StatusBadRequest,
	)
	ErrDailyCapExceeded = apperror.New(
		apperror.CodeInvalidInput,
		"credits for this date would exceed one full working day",
		http.StatusBadRequest,
	)
	ErrNotAuthorizedToGrant = apperror.New(
		apperror.CodeForbidden,
		"only the employee's manager or an admin can manage comp-off credits",
		http.StatusForbidden,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
)
