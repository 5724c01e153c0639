package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the broad category of a ledger failure.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindInternal   Kind = "INTERNAL"
)

// Code identifies a specific failure within a Kind.
type Code string

const (
	CodeConflict                 Code = "CODE_CONFLICT"
	CodeSystemAccountProtected   Code = "SYSTEM_ACCOUNT_PROTECTED"
	CodeAccountNotFound          Code = "ACCOUNT_NOT_FOUND"
	CodeUnbalancedEntry          Code = "UNBALANCED_ENTRY"
	CodeAccountInactiveOrForeign Code = "ACCOUNT_INACTIVE_OR_FOREIGN"
	CodeInsufficientLines        Code = "INSUFFICIENT_LINES"
	CodeInvalidLine              Code = "INVALID_LINE"
	CodeEntryNotFound            Code = "ENTRY_NOT_FOUND"
	CodeAlreadyReversed          Code = "ALREADY_REVERSED"
	CodeDuplicateSourceEvent     Code = "DUPLICATE_SOURCE_EVENT"
	CodeEntryNotPosted           Code = "ENTRY_NOT_POSTED"
	CodeInvalidTransition        Code = "INVALID_STATUS_TRANSITION"
	CodeInvalidEvent             Code = "INVALID_EVENT"
	CodeEventNotApplicable       Code = "EVENT_NOT_APPLICABLE"
	CodeUnmappedAccount          Code = "UNMAPPED_ACCOUNT"
)

// Error is the error type returned by the ledger core.
// Resource names the conflicting or missing resource where there is one.
type Error struct {
	Kind     Kind
	Code     Code
	Message  string
	Resource string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Resource != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Resource)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code, or on Kind when the target carries no Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return t.Kind != "" && e.Kind == t.Kind
}

// Kind sentinels. errors.Is(err, ErrNotFound) is true for every NOT_FOUND code.
var (
	ErrValidation = &Error{Kind: KindValidation, Message: "validation error"}
	ErrConflict   = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrInternal   = &Error{Kind: KindInternal, Message: "internal error"}
)

// ErrDuplicate is returned by repositories on a unique violation.
var ErrDuplicate = errors.New("resource already exists")

// Code sentinels.
var (
	ErrCodeConflict             = &Error{Kind: KindConflict, Code: CodeConflict, Message: "account code already exists"}
	ErrSystemAccountProtected   = &Error{Kind: KindConflict, Code: CodeSystemAccountProtected, Message: "system accounts cannot be modified"}
	ErrAccountNotFound          = &Error{Kind: KindNotFound, Code: CodeAccountNotFound, Message: "account not found"}
	ErrUnbalancedEntry          = &Error{Kind: KindValidation, Code: CodeUnbalancedEntry, Message: "debits do not equal credits"}
	ErrAccountInactiveOrForeign = &Error{Kind: KindValidation, Code: CodeAccountInactiveOrForeign, Message: "account is inactive or belongs to another tenant"}
	ErrInsufficientLines        = &Error{Kind: KindValidation, Code: CodeInsufficientLines, Message: "journal entry needs at least two lines"}
	ErrInvalidLine              = &Error{Kind: KindValidation, Code: CodeInvalidLine, Message: "invalid journal line"}
	ErrEntryNotFound            = &Error{Kind: KindNotFound, Code: CodeEntryNotFound, Message: "journal entry not found"}
	ErrAlreadyReversed          = &Error{Kind: KindConflict, Code: CodeAlreadyReversed, Message: "journal entry already reversed"}
	ErrDuplicateSourceEvent     = &Error{Kind: KindConflict, Code: CodeDuplicateSourceEvent, Message: "source event already posted by another entry"}
	ErrEntryNotPosted           = &Error{Kind: KindConflict, Code: CodeEntryNotPosted, Message: "journal entry is not posted"}
	ErrInvalidTransition        = &Error{Kind: KindConflict, Code: CodeInvalidTransition, Message: "status transition not allowed"}
	ErrInvalidEvent             = &Error{Kind: KindValidation, Code: CodeInvalidEvent, Message: "malformed event"}
	ErrEventNotApplicable       = &Error{Kind: KindValidation, Code: CodeEventNotApplicable, Message: "event does not produce a posting"}
	ErrUnmappedAccount          = &Error{Kind: KindValidation, Code: CodeUnmappedAccount, Message: "no account mapping"}
)

// New returns a copy of base with a formatted detail message.
func New(base *Error, format string, args ...any) *Error {
	e := *base
	e.Message = fmt.Sprintf("%s: %s", base.Message, fmt.Sprintf(format, args...))
	return &e
}

// WithResource returns a copy of base naming the offending resource.
func WithResource(base *Error, resource string) *Error {
	e := *base
	e.Resource = resource
	return &e
}

// Wrap returns a copy of base wrapping cause.
func Wrap(base *Error, cause error) *Error {
	e := *base
	e.Err = cause
	return &e
}

// Internal wraps an unexpected infrastructure error.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf reports the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf reports the Code of err, or "" when it has none.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
