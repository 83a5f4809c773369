package exerrors

import (
	"net/http"

	"gigpay/internal/shared/apperror"
)

var (
	ErrExemptionNotFound = apperror.New(
		apperror.CodeNotFound,
		"exemption not found",
		http.StatusNotFound,
	)
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid worker id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidValidityWindow = apperror.New(
		apperror.CodeInvalidInput,
		"valid_from must be before or equal valid_until",
		http.StatusBadRequest,
	)
	ErrRuleNotOptOutable = apperror.New(
		apperror.CodeInvalidInput,
		"this rule does not allow opt-outs",
		http.StatusBadRequest,
	)
	// Dua approval yang tumpang tindih untuk (worker, rule) yang sama adalah
	// konflik: yang pertama menang, yang kedua gagal.
	ErrExemptionConflict = apperror.New(
		apperror.CodeConflict,
		"an active exemption already exists for this worker and rule",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid exemption status transition",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when rejecting",
		http.StatusBadRequest,
	)
	ErrRevocationReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"revocation_reason is required when revoking",
		http.StatusBadRequest,
	)
)
