package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"listing-workers/internal/common/config"
	"listing-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Connect creates a Zeebe client and checks the gateway with a topology
// request, retrying with exponential backoff.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (zbc.Client, error) {
	var client zbc.Client
	err := RetryWithBackoff(ctx, retry, log, "Zeebe client initialization", func(ctx context.Context) error {
		c, err := zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.BrokerAddress,
			UsePlaintextConnection: true,
		})
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.RequestTimeout) * time.Millisecond
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		topoCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if _, err := c.NewTopologyCommand().Send(topoCtx); err != nil {
			c.Close()
			return fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// RetryWithBackoff runs operation until it succeeds, a non-transient error is
// returned, MaxRetries attempts are used or ctx is done.
func RetryWithBackoff(ctx context.Context, retry RetryConfig, log logger.Logger, operationName string, operation func(context.Context) error) error {
	if retry.MaxRetries <= 0 {
		retry.MaxRetries = 1
	}

	var err error
	delay := retry.BaseDelay
	for attempt := 1; attempt <= retry.MaxRetries; attempt++ {
		if err = operation(ctx); err == nil {
			return nil
		}
		if attempt == retry.MaxRetries || !IsRetryable(err) {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
			"error":       err,
			"attempt":     attempt,
			"maxRetries":  retry.MaxRetries,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operationName, attempt, ctx.Err())
		}

		delay *= 2
		if retry.MaxDelay > 0 && delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
	}
	return fmt.Errorf("%s failed: %w", operationName, err)
}

// IsRetryable reports whether err looks like a transient connection problem.
func IsRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"no such host",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
