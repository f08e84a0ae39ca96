package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeForbiddenTarget    = "FORBIDDEN_TARGET"
	ErrCodeRobotsDisallowed   = "ROBOTS_DISALLOWED"
	ErrCodeLoginPageBlocked   = "LOGIN_PAGE_BLOCKED"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeUnsupportedContent = "UNSUPPORTED_CONTENT_TYPE"
	ErrCodeFetchFailed        = "FETCH_FAILED"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// User-facing messages for guardrail rejections. Transport details stay in
// logs; responses carry only these short explanations.
const (
	MsgInvalidURL         = "Only HTTP/S URLs are supported."
	MsgLocalTarget        = "Local targets are not allowed."
	MsgPrivateTarget      = "Private or internal addresses are blocked."
	MsgRobotsDisallowed   = "robots.txt forbids scraping."
	MsgLoginPageBlocked   = "Login form detected; scraping aborted."
	MsgPayloadTooLarge    = "Page is too large to fetch safely."
	MsgUnsupportedContent = "Unsupported content type."
	MsgFetchFailed        = "Could not fetch the page."
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
