package lrerrors

import (
	"net/http"

	"gigpay/internal/shared/apperror"
)

var (
	ErrRuleNotFound = apperror.New(
		apperror.CodeNotFound,
		"labor law rule not found",
		http.StatusNotFound,
	)
	ErrDuplicateRuleCode = apperror.New(
		apperror.CodeConflict,
		"rule code already exists for this jurisdiction",
		http.StatusConflict,
	)
	ErrMissingRuleParams = apperror.New(
		apperror.CodeInvalidState,
		"rule parameters are missing fields required by its rule type",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidRulePeriod = apperror.New(
		apperror.CodeInvalidInput,
		"rule period must be one of day, week, month",
		http.StatusBadRequest,
	)
	ErrUnknownRuleType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown rule type",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"effective_from must be before or equal effective_until",
		http.StatusBadRequest,
	)
	ErrInvalidEnforcement = apperror.New(
		apperror.CodeInvalidInput,
		"enforcement must be one of hard_block, soft_warning, log_only",
		http.StatusBadRequest,
	)
)
