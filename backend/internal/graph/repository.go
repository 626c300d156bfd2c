package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/metrics"
	apperrors "recipe-graph/backend/pkg/errors"
	"recipe-graph/backend/pkg/logger"
)

const constraintViolationCode = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Repository handles all Neo4j database operations. Every public method runs
// as exactly one managed transaction.
type Repository struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
	logger       *zap.Logger
}

// Option configures a Repository
type Option func(*Repository)

// WithDatabase selects a non-default Neo4j database
func WithDatabase(name string) Option {
	return func(r *Repository) { r.database = name }
}

// WithQueryTimeout bounds every transaction. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *Repository) { r.queryTimeout = d }
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, opts ...Option) *Repository {
	r := &Repository{
		driver:       driver,
		queryTimeout: 10 * time.Second,
		logger:       logger.Named("graph"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// Ping runs a trivial query to prove the store answers
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.executeRead(ctx, "ping", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, "RETURN 1 AS ok", nil)
		if err != nil {
			return nil, err
		}
		_, err = result.Single(ctx)
		return nil, err
	})
	return err
}

// txWork is the body of a managed transaction
type txWork func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error)

func (r *Repository) executeRead(ctx context.Context, operation string, work txWork) (interface{}, error) {
	return r.execute(ctx, operation, neo4j.AccessModeRead, work)
}

func (r *Repository) executeWrite(ctx context.Context, operation string, work txWork) (interface{}, error) {
	return r.execute(ctx, operation, neo4j.AccessModeWrite, work)
}

func (r *Repository) execute(ctx context.Context, operation string, mode neo4j.AccessMode, work txWork) (interface{}, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
	defer session.Close(ctx)

	fn := func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return work(ctx, tx)
	}

	start := time.Now()
	var (
		result interface{}
		err    error
	)
	modeLabel := "write"
	if mode == neo4j.AccessModeRead {
		modeLabel = "read"
		result, err = session.ExecuteRead(ctx, fn)
	} else {
		result, err = session.ExecuteWrite(ctx, fn)
	}
	metrics.ObserveGraphTx(operation, modeLabel, time.Since(start), err)

	if err != nil {
		return nil, r.translateError(operation, err)
	}
	return result, nil
}

// translateError keeps domain errors raised inside a transaction and maps
// driver errors onto the application taxonomy.
func (r *Repository) translateError(operation string, err error) error {
	if apperrors.TypeOf(err) != "" {
		return err
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == constraintViolationCode {
		return apperrors.NewBaseError(apperrors.ErrorTypeConflict, "unique constraint violated", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", r.queryTimeout, err)
	}

	r.logger.Error("Graph transaction failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return apperrors.NewUpstreamFailure(operation, err)
}

// collectRecords drains a result inside the transaction that produced it
func collectRecords(ctx context.Context, result neo4j.ResultWithContext) ([]*neo4j.Record, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// singleOptional returns the first record or nil when the query matched nothing
func singleOptional(ctx context.Context, result neo4j.ResultWithContext) (*neo4j.Record, error) {
	if result.Next(ctx) {
		return result.Record(), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch record: %w", err)
	}
	return nil, nil
}
