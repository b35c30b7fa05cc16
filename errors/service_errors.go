package errors

import (
	"safetx/jsonx"
)

// ServiceErrorCode represents standardized error codes for the confirmation
// tracking service
type ServiceErrorCode string

const (
	// General errors
	ErrCodeInternal ServiceErrorCode = "internal_error"

	// Syntax errors (400-class)
	ErrCodeInvalidRequest   ServiceErrorCode = "invalid_request"
	ErrCodeMalformedAddress ServiceErrorCode = "malformed_address"
	ErrCodeInvalidDigest    ServiceErrorCode = "invalid_digest"
	ErrCodeInvalidValue     ServiceErrorCode = "invalid_value"
	ErrCodeInvalidOperation ServiceErrorCode = "invalid_operation"

	// Validation errors (400-class)
	ErrCodeDigestMismatch ServiceErrorCode = "digest_mismatch"
	ErrCodeNotApproved    ServiceErrorCode = "not_approved"

	// Processability errors (422-class)
	ErrCodeUnprocessableWallet     ServiceErrorCode = "unprocessable_wallet"
	ErrCodeInconsistentTransaction ServiceErrorCode = "inconsistent_transaction"

	// Aggregation errors
	ErrCodeDuplicateConfirmation ServiceErrorCode = "duplicate_confirmation"
	ErrCodeWalletUnknown         ServiceErrorCode = "wallet_unknown"

	// Infrastructure errors (retryable, never conflated with validation)
	ErrCodeOracleUnavailable ServiceErrorCode = "oracle_unavailable"
	ErrCodeRateLimited       ServiceErrorCode = "rate_limited"
)

// ServiceError represents a standardized service error
type ServiceError struct {
	Code    ServiceErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	err, _ := jsonx.Marshal(ServiceError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// NewError creates a new ServiceError and returns it as error interface
func NewError(code ServiceErrorCode, message string) error {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// CodeOf extracts the service error code from an error, falling back to
// internal_error for anything outside the taxonomy
func CodeOf(err error) ServiceErrorCode {
	if se, ok := err.(*ServiceError); ok {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given service error code
func IsCode(err error, code ServiceErrorCode) bool {
	se, ok := err.(*ServiceError)
	return ok && se.Code == code
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest          = "Request format is invalid"
	ErrMsgMalformedAddress        = "Account address is invalid"
	ErrMsgInvalidDigest           = "Transaction digest is invalid"
	ErrMsgInvalidValue            = "Transaction value is invalid"
	ErrMsgInvalidOperation        = "Transaction operation is invalid"
	ErrMsgDigestMismatch          = "Transaction digest does not match its parameters"
	ErrMsgNotApproved             = "Sender has not approved this transaction on-chain"
	ErrMsgUnprocessableWallet     = "Wallet address cannot be processed"
	ErrMsgInconsistentTransaction = "Transaction parameters conflict with an existing proposal"
	ErrMsgDuplicateConfirmation   = "This confirmation already exists"
	ErrMsgWalletUnknown           = "No transactions recorded for this wallet"
	ErrMsgOracleUnavailable       = "Chain state is unavailable, please retry"
	ErrMsgRateLimited             = "Too many requests, please slow down"
	ErrMsgInternal                = "Server error, please try again"
)
