package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure. The HTTP layer maps kinds to status codes.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindUploadRejected
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUploadRejected:
		return "UPLOAD_REJECTED"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_FAILURE"
	}
}

// Resources named by NotFound errors.
const (
	ResourceToy   = "toy"
	ResourceImage = "image"
	ResourceUser  = "user"
)

// FieldError is a single failed validation rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the failure type returned by repositories, services and the upload boundary.
type Error struct {
	Kind     ErrorKind
	Resource string
	Message  string
	Fields   []FieldError
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error of the same kind. A target with a Resource
// only matches errors about that resource.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Resource == "" || t.Resource == e.Resource
}

var (
	ErrToyNotFound   = &Error{Kind: KindNotFound, Resource: ResourceToy, Message: "Toy not found"}
	ErrImageNotFound = &Error{Kind: KindNotFound, Resource: ResourceImage, Message: "Image not found"}
	ErrUserNotFound  = &Error{Kind: KindNotFound, Resource: ResourceUser, Message: "User not found"}
	ErrEmailTaken    = &Error{Kind: KindConflict, Resource: ResourceUser, Message: "user with this email already exists"}

	ErrNotFound       = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation     = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUploadRejected = &Error{Kind: KindUploadRejected, Message: "upload rejected"}
)

// Validation builds a ValidationFailed error carrying every failed field.
func Validation(message string, fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// UploadRejected builds an error for a file refused at the upload boundary.
func UploadRejected(message string) *Error {
	return &Error{Kind: KindUploadRejected, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
