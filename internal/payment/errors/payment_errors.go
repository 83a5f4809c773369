package payerrors

import (
	"net/http"

	"gigpay/internal/shared/apperror"
)

var (
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid worker id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"gross_amount must be a non-negative decimal",
		http.StatusBadRequest,
	)
	ErrInvalidShiftWindow = apperror.New(
		apperror.CodeInvalidInput,
		"shift_start must be before shift_end",
		http.StatusBadRequest,
	)
	ErrInvalidWorkRecord = apperror.New(
		apperror.CodeInvalidInput,
		"work record contains malformed values",
		http.StatusBadRequest,
	)
	ErrEmptyBatch = apperror.New(
		apperror.CodeInvalidInput,
		"batch must contain at least one item",
		http.StatusBadRequest,
	)
)
