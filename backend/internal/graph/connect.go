package graph

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// ConnectOptions describes how to reach the store and how long to keep trying
type ConnectOptions struct {
	URI            string
	User           string
	Password       string
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Connect creates a driver and waits for the store to accept connections,
// retrying with exponential backoff up to MaxAttempts.
func Connect(ctx context.Context, opts ConnectOptions, log *zap.Logger) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""))
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("create neo4j driver", err)
	}

	if err := waitForStore(ctx, driver, opts, log); err != nil {
		_ = driver.Close(context.Background())
		return nil, err
	}
	return driver, nil
}

// connectivityChecker is the part of the driver waitForStore needs
type connectivityChecker interface {
	VerifyConnectivity(ctx context.Context) error
}

func waitForStore(ctx context.Context, driver connectivityChecker, opts ConnectOptions, log *zap.Logger) error {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	expo := backoff.NewExponentialBackOff()
	if opts.InitialBackoff > 0 {
		expo.InitialInterval = opts.InitialBackoff
	}
	if opts.MaxBackoff > 0 {
		expo.MaxInterval = opts.MaxBackoff
	}
	expo.MaxElapsedTime = 0 // bounded by attempts instead

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(attempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		return driver.VerifyConnectivity(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("Neo4j not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return apperrors.NewUpstreamFailure("connect to neo4j at "+opts.URI, err)
	}

	log.Info("Connected to Neo4j", zap.String("uri", opts.URI), zap.Int("attempts", attempt))
	return nil
}
