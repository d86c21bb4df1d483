package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"

	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/usecase/shared"
)

var errMaxRetriesExceeded = errs.New("transaction failed after max retries")

// RetryPolicy reruns a whole transaction attempt when the store reports a
// conflict. Each store supplies its own notion of retryable.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
	Retryable  func(err error) bool
	Logger     *slog.Logger
}

func NewRetryPolicy(cfg config.TxConfig, logger *slog.Logger, retryable func(err error) bool) RetryPolicy {
	return RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Base:       cfg.BaseBackoff,
		Retryable:  retryable,
		Logger:     logger,
	}
}

func (p RetryPolicy) Run(ctx context.Context, attempt func(ctx context.Context) error) error {
	for n := 0; ; n++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if !p.isRetryable(err) {
			return err
		}
		if n >= p.MaxRetries {
			p.Logger.Error("transaction failed after max retries",
				"attempts", n+1,
				"error", err.Error())
			return errs.Mark(err, errMaxRetriesExceeded)
		}

		waitTime := calculateBackoff(n, p.Base)

		p.Logger.Warn("retrying transaction due to retryable error",
			"attempt", n+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// A write conflict is retryable for every store.
func (p RetryPolicy) isRetryable(err error) bool {
	if isWriteConflict(err) {
		return true
	}
	return p.Retryable != nil && p.Retryable(err)
}

func isWriteConflict(err error) bool {
	e, ok := errs.As(err)
	return ok && e.Code == shared.ErrWriteConflict.Code
}

// IsMaxRetriesExceeded reports whether err is the final failure of a retry
// loop.
func IsMaxRetriesExceeded(err error) bool {
	return errs.Is(err, errMaxRetriesExceeded)
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// mask the sign bit so the conversion stays non-negative
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked above
	return int64(uval) % n
}
