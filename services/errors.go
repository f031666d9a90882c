package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorKind discriminates operation failures so the transport layer can map
// them without string matching.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindTransport     ErrorKind = "transport"
)

// Error is the discriminated failure returned by every service operation
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind; unclassified errors are transport failures
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// HTTPStatus maps an operation failure to a response status
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

const pqUniqueViolation = "23505"

// classifyDB translates store failures into the taxonomy. Unique-constraint
// violations surface as conflicts so racing writers get a clean rejection
// instead of a 500.
func classifyDB(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("record not found")
	}
	if isUniqueViolation(err) {
		if conflictMsg == "" {
			conflictMsg = "Duplicate record"
		}
		return Conflictf("%s", conflictMsg)
	}
	return &Error{Kind: KindTransport, Message: err.Error()}
}

// isUniqueViolation recognizes unique-constraint failures from postgres and
// from the in-memory sqlite database the tests run against
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
