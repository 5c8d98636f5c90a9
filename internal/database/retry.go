package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	mysqldriver "github.com/go-sql-driver/mysql"
)

const (
	retryMaxAttempts     = 3
	retryInitialInterval = 50 * time.Millisecond
)

// Retry runs fn again when it fails with a transient connection error. Only
// idempotent operations may be passed in; any other error is returned at once.
func Retry(ctx context.Context, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	bounded := backoff.WithMaxRetries(backoff.WithContext(policy, ctx), retryMaxAttempts-1)

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, bounded)
}

// IsTransient reports whether err looks like a dropped or unreachable
// connection rather than a query or constraint failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqldriver.ErrInvalidConn) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
