package usecase

import "errors"

const (
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeNoContactsAvailable  = "NO_CONTACTS_AVAILABLE"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInvalidContactReason = "INVALID_CONTACT_REASON"
	CodeInvalidContactMethod = "INVALID_CONTACT_METHOD"
	CodeStorageError         = "STORAGE_ERROR"
	CodeTransportError       = "TRANSPORT_ERROR"
)

// DomainError is a business-rule failure. It is recorded and surfaced but
// never retried by the server.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure (storage, transport). The
// cause is kept for the error log; callers only see code and message.
type TechnicalError struct {
	Code    string
	Message string
	Cause   error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Cause
}

func NewTechnicalError(code, message string, cause error) *TechnicalError {
	return &TechnicalError{Code: code, Message: message, Cause: cause}
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode extracts the taxonomy code from either error kind.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// ErrNoContactsAvailable is recoverable: the caller should retry later or
// try a different (reason, method).
var ErrNoContactsAvailable = NewDomainError(CodeNoContactsAvailable, "no contacts available for this reason and method")
