package jerrors

import (
	"net/http"

	"gigpay/internal/shared/apperror"
)

var (
	// ErrJurisdictionNotFound wajib sampai ke caller secara eksplisit.
	// Diam-diam menghitung pajak nol bukan default yang aman.
	ErrJurisdictionNotFound = apperror.New(
		apperror.CodeNotFound,
		"no active tax jurisdiction for this location",
		http.StatusNotFound,
	)
	ErrInvalidCountryCode = apperror.New(
		apperror.CodeInvalidInput,
		"country code is required",
		http.StatusBadRequest,
	)
	ErrInvalidJurisdictionID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid jurisdiction id",
		http.StatusBadRequest,
	)
	ErrActiveTupleExists = apperror.New(
		apperror.CodeConflict,
		"an active jurisdiction already exists for this country/state/city",
		http.StatusConflict,
	)
	ErrInvalidRate = apperror.New(
		apperror.CodeInvalidInput,
		"rates must be between 0 and 100 percent",
		http.StatusBadRequest,
	)
	ErrInvalidBrackets = apperror.New(
		apperror.CodeInvalidInput,
		"tax brackets must have ascending thresholds and non-negative rates",
		http.StatusBadRequest,
	)
)
