package cperrors

import (
	"net/http"

	"gigpay/internal/shared/apperror"
)

var (
	ErrMissingMetric = apperror.New(
		apperror.CodeInvalidInput,
		"work record is missing the metric required by this rule",
		http.StatusUnprocessableEntity,
	)
	ErrCorruptWorkRecord = apperror.New(
		apperror.CodeInvalidInput,
		"work record is corrupt",
		http.StatusUnprocessableEntity,
	)
	ErrPaymentBlocked = apperror.New(
		apperror.CodeInvalidState,
		"action blocked by labor law compliance",
		http.StatusUnprocessableEntity,
	)
)
