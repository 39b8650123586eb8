package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// RetryConfig задаёт повторы идемпотентных запросов (GET).
// Отправка заказа никогда не повторяется.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// WithRetry включает повторы GET-запросов при сетевых ошибках и ответах 5xx/429.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body, out interface{}) error {
	attempts := c.retry.MaxAttempts
	if method != http.MethodGet || attempts < 1 {
		attempts = 1
	}

	delay := c.retry.InitialDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = c.do(ctx, method, path, body, out)
		if err == nil {
			if attempt > 1 {
				c.logger.WithFields(log.Fields{
					"path":    path,
					"attempt": attempt,
				}).Info("request succeeded after retry")
			}
			return nil
		}
		if attempt == attempts || !shouldRetry(ctx, err) {
			return err
		}

		c.logger.WithFields(log.Fields{
			"path":    path,
			"attempt": attempt,
			"delay":   delay,
			"error":   err,
		}).Warn("request failed, retrying")

		if !sleepCtx(ctx, delay) {
			return err
		}

		// Экспоненциальная задержка с ограничением
		delay = time.Duration(float64(delay) * c.retry.BackoffFactor)
		if c.retry.MaxDelay > 0 && delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}
	}
	return err
}

// shouldRetry: ответы 4xx и отмена контекста не повторяются.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusTooManyRequests
	}
	// Ошибки разбора ответа повтор не исправит.
	var decodeErr *decodeResponseError
	return !errors.As(err, &decodeErr)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
