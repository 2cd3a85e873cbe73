package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
// It is also returned when a caller is not allowed to learn whether the
// resource exists (ownership checks on accounts).
var ErrNotFound = errors.New("resource not found")

// ErrUnauthorized indicates that the caller is not authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller is authenticated but lacks the
// required role for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidRange indicates that a blocking interval is malformed
// (start in the past, end before start, or missing reason).
var ErrInvalidRange = errors.New("invalid blocking range")

// ErrAlreadyBlocked indicates that the account already has a block in effect.
var ErrAlreadyBlocked = errors.New("account already blocked")

// ErrAlreadyArchived indicates that the account was already archived.
// Archival is terminal; no further transitions are permitted.
var ErrAlreadyArchived = errors.New("account already archived")

// ErrConflict indicates a lost race on an atomic update; the caller may retry.
var ErrConflict = errors.New("concurrent update conflict")

// ErrDependency indicates that a downstream dependency (storage) failed.
var ErrDependency = errors.New("dependency failure")
