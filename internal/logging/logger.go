// Package logging is the structured logger shared by the server, its
// services and gophctl. The slog implementation writes JSON and never
// emits values of secret-bearing keys such as "password" or "token".
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Info(ctx, "signup", "access", key)
//
// Components log through a child from With("module", name).
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn covers rejected input, such as a malformed token.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
