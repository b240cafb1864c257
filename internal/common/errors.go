// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of gophgram. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrUniqueViolation = errors.New("unique constraint violation")

	// Service-level errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidArgument    = errors.New("invalid argument")

	// Token errors.
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")

	// Credential errors. ErrEmailNotFound and ErrPasswordMismatch both match
	// ErrCredentialMismatch, so callers that must not distinguish them
	// (the public login endpoint) can test for the parent only.
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrEmailNotFound      = fmt.Errorf("%w: email not found", ErrCredentialMismatch)
	ErrPasswordMismatch   = fmt.Errorf("%w: password mismatch", ErrCredentialMismatch)

	// Uniqueness errors at signup and entity creation.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateAccessKey = errors.New("duplicate access key")
	ErrAccessKeyExhausted = errors.New("access key attempts exhausted")

	// Startup errors.
	ErrKeyMisconfiguration = errors.New("key misconfiguration")
)
