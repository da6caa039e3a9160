package leavetypeerrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"no leave policy configured for this leave type",
		http.StatusBadRequest,
	)
	ErrDuplicateCode = apperror.New(
		apperror.CodeConflict,
		"a leave type with this code already exists",
		http.StatusConflict,
	)
	ErrDuplicatePolicy = apperror.New(
		apperror.CodeConflict,
		"a policy already exists for this leave type",
		http.StatusConflict,
	)
)
