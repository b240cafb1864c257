package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/accesskey"
	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/sethvargo/go-retry"
)

// insertRetryDelay spaces out inserts that lost a race on the access key.
const insertRetryDelay = 5 * time.Millisecond

// createWithAccessKey mints a unique access key and runs insert with it. A
// unique violation from insert means the key was taken between the check and
// the insert, unless onConflict says otherwise: a non-nil error from it stops
// the loop and is returned as is.
func createWithAccessKey(
	ctx context.Context,
	keys *accesskey.Generator,
	prefix string,
	exists accesskey.ExistsFunc,
	insert func(ctx context.Context, key string) error,
	onConflict func(ctx context.Context) error,
) (string, error) {
	var key string

	b := retry.WithMaxRetries(uint64(keys.MaxAttempts()-1), retry.NewConstant(insertRetryDelay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		candidate, err := keys.GenerateUnique(ctx, prefix, exists)
		if err != nil {
			return err
		}

		err = insert(ctx, candidate)
		if err == nil {
			key = candidate
			return nil
		}
		if !errors.Is(err, common.ErrUniqueViolation) {
			return err
		}

		if onConflict != nil {
			if err := onConflict(ctx); err != nil {
				return err
			}
		}
		return retry.RetryableError(common.ErrDuplicateAccessKey)
	})
	if err != nil {
		return "", err
	}

	return key, nil
}

// storageError classifies a repository failure. Deadline and cancellation
// keep their context error so the transport can answer with a retryable
// status.
func storageError(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrDuplicateEmail),
		errors.Is(err, common.ErrCredentialMismatch),
		errors.Is(err, common.ErrAccessKeyExhausted),
		errors.Is(err, common.ErrDuplicateAccessKey),
		errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrStorageUnavailable):
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
}
