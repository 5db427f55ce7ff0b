package errors

import "fmt"

// Error types for the maps API
var (
	// ErrIncorrectType is returned when a payload does not have the expected
	// shape: wrong content type, malformed body, wrong field types or missing
	// required fields.
	ErrIncorrectType = &ServiceError{
		Code:    "INCORRECT_TYPE",
		Message: "Malformed request",
		Status:  400,
	}

	// ErrValidation is returned when a payload is well formed but violates a
	// domain rule. Details carries the field violations.
	ErrValidation = &ServiceError{
		Code:    "VALIDATION_FAILED",
		Message: "Request failed validation",
		Status:  422,
	}

	ErrExpectedBearerToken = &ServiceError{
		Code:    "EXPECTED_BEARER_TOKEN",
		Message: "Expected a bearer token in the Authorization header",
		Status:  401,
	}

	ErrInvalidToken = &ServiceError{
		Code:    "INVALID_TOKEN",
		Message: "Invalid or expired token",
		Status:  401,
	}

	ErrAuthRequired = &ServiceError{
		Code:    "AUTHENTICATION_REQUIRED",
		Message: "Authentication required",
		Status:  401,
	}

	ErrIdentityRejected = &ServiceError{
		Code:    "IDENTITY_REJECTED",
		Message: "Identity provider rejected the assertion",
		Status:  401,
	}

	ErrAssertionReplayed = &ServiceError{
		Code:    "ASSERTION_REPLAYED",
		Message: "Assertion has already been used",
		Status:  401,
	}

	ErrNotEnoughBattles = &ServiceError{
		Code:    "NOT_ENOUGH_BATTLES",
		Message: "Account has not played enough battles",
		Status:  403,
	}

	ErrAccountNotFound = &ServiceError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "Account not found",
		Status:  404,
	}

	ErrUnrecognizedValue = &ServiceError{
		Code:    "UNRECOGNIZED_VALUE",
		Message: "Unrecognized server, map or mode",
		Status:  422,
	}

	ErrRateLimitExceeded = &ServiceError{
		Code:    "RATE_LIMIT_EXCEEDED",
		Message: "Rate limit exceeded",
		Status:  429,
	}

	ErrInternalServer = &ServiceError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
		Status:  500,
	}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Code    string
	Message string
	Status  int
	// Details is serialized as the "detail" member of the error body. It must
	// only ever hold client-safe data.
	Details any
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a ServiceError with the same code, so wrapped
// copies still match the catalog entries above.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap wraps an error with a ServiceError
func Wrap(err error, serviceErr *ServiceError) *ServiceError {
	return &ServiceError{
		Code:    serviceErr.Code,
		Message: serviceErr.Message,
		Status:  serviceErr.Status,
		Details: serviceErr.Details,
		Err:     err,
	}
}

// WithDetails returns a copy of serviceErr carrying details.
func WithDetails(serviceErr *ServiceError, details any) *ServiceError {
	return &ServiceError{
		Code:    serviceErr.Code,
		Message: serviceErr.Message,
		Status:  serviceErr.Status,
		Details: details,
		Err:     serviceErr.Err,
	}
}
