package balanceerrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"no leave balance found for this employee and leave type",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"insufficient leave balance",
		http.StatusConflict,
	)
	ErrNegativeBucket = apperror.New(
		apperror.CodeConflict,
		"balance update would drive an hour bucket negative",
		http.StatusConflict,
	)
)
