package reporting

import "errors"

// Kind classifies reporting failures.
type Kind string

const (
	KindInvalidReportType Kind = "InvalidReportType"
	KindInvalidDateRange  Kind = "InvalidDateRange"
	KindDataLoad          Kind = "DataLoadError"
	KindCategoryLoad      Kind = "CategoryLoadError"
	KindDisplay           Kind = "DisplayError"
)

// ErrorCode is a stable identifier for a reporting error.
// Format: RPT-XXYYYY where XX is category and YYYY is specific error.
type ErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidReportType ErrorCode = "RPT-010001"
	ErrCodeInvalidDateRange  ErrorCode = "RPT-010002"

	// Storage errors (02XXXX)
	ErrCodeDataLoad     ErrorCode = "RPT-020001"
	ErrCodeCategoryLoad ErrorCode = "RPT-020002"

	// Rendering errors (03XXXX)
	ErrCodeDisplay ErrorCode = "RPT-030001"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrInvalidReportType = errors.New("invalid report type")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrDataLoad          = errors.New("failed to load report data")
	ErrCategoryLoad      = errors.New("failed to load categories")
	ErrDisplay           = errors.New("failed to render report")
)

var kindSentinels = map[Kind]error{
	KindInvalidReportType: ErrInvalidReportType,
	KindInvalidDateRange:  ErrInvalidDateRange,
	KindDataLoad:          ErrDataLoad,
	KindCategoryLoad:      ErrCategoryLoad,
	KindDisplay:           ErrDisplay,
}

var kindCodes = map[Kind]ErrorCode{
	KindInvalidReportType: ErrCodeInvalidReportType,
	KindInvalidDateRange:  ErrCodeInvalidDateRange,
	KindDataLoad:          ErrCodeDataLoad,
	KindCategoryLoad:      ErrCodeCategoryLoad,
	KindDisplay:           ErrCodeDisplay,
}

// Error is a reporting failure with a kind, code and user-facing message.
type Error struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// newError creates an Error of the given kind.
func newError(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    kindCodes[kind],
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of a reporting error, or "" for foreign errors.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return ""
}
