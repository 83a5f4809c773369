package taxerrors

import (
	"net/http"

	"gigpay/internal/shared/apperror"
)

var (
	ErrNegativeGross = apperror.New(
		apperror.CodeInvalidInput,
		"gross amount must not be negative",
		http.StatusBadRequest,
	)
	// Konfigurasi bracket rusak harus gagal keras, bukan menghasilkan angka
	// yang kelihatan benar.
	ErrInvalidBracketConfig = apperror.New(
		apperror.CodeInvalidState,
		"tax bracket configuration is malformed",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid worker id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"invalid gross amount",
		http.StatusBadRequest,
	)
	ErrInvalidCalculationType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid calculation type",
		http.StatusBadRequest,
	)
	ErrCalculationNotFound = apperror.New(
		apperror.CodeNotFound,
		"tax calculation not found",
		http.StatusNotFound,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"from must be before or equal to",
		http.StatusBadRequest,
	)
)
