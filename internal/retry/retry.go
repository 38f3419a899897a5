package retry

import (
	"context"
	"strings"
	"time"

	"favr_backend/pkg/apperrors"

	"github.com/cenkalti/backoff/v4"
)

// Config controls the exponential backoff applied to remote calls.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// Retryable is the substring classifier for transient errors. Errors
	// already tagged as transient by the store layer retry regardless.
	Retryable []string
}

// defaultRetryable covers network blips, timeouts and the transient
// authorization-timing failures seen on freshly issued sessions.
var defaultRetryable = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"timeout",
	"timed out",
	"temporary failure",
	"unexpected eof",
	"jwt expired",
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Retryable:    defaultRetryable,
	}
}

// IsRetryable classifies err. State conflicts (AlreadyMatched, illegal
// transitions) are final business outcomes and never retryable, whatever the
// message says.
func (c Config) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.IsStateConflict(err) {
		return false
	}
	if apperrors.IsTransient(err) {
		return true
	}

	patterns := c.Retryable
	if patterns == nil {
		patterns = defaultRetryable
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func (c Config) newBackOff() backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialDelay
	bo.Multiplier = c.Multiplier
	bo.MaxInterval = c.MaxDelay
	bo.RandomizationFactor = 0.2
	bo.MaxElapsedTime = 0 // attempts are bounded by MaxAttempts instead
	return bo
}

// Do runs op with exponential backoff and jitter. Non-retryable errors and
// exhausted attempts propagate the original error.
func Do(ctx context.Context, cfg Config, op func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	bo := backoff.WithMaxRetries(cfg.newBackOff(), uint64(cfg.MaxAttempts-1))
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if cfg.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}
