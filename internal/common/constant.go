// Package common contains shared constants and sentinel errors used across
// gophgram components.
package common

// AccessTokenHeaderName is the HTTP header that carries the bearer token.
const AccessTokenHeaderName = "token"

// AuthorizationHeaderName is the standard header accepted as a fallback,
// in the form "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// Access key prefixes, one per entity kind.
const (
	UserAccessPrefix    = "usr"
	PostAccessPrefix    = "pst"
	CommentAccessPrefix = "cmt"
)
