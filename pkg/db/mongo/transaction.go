package mongo

import (
	"context"
	"fmt"

	apperrors "sarpras/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransactionFunc receives a mongo.SessionContext when running inside a
// transaction and the caller's context otherwise.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

// NewTransactionManager returns a manager that wraps fn in a multi-document
// transaction when enabled. Standalone servers do not support transactions,
// so a disabled manager runs fn directly on the caller's context.
func NewTransactionManager(client *mongo.Client, enabled bool) TransactionManager {
	if !enabled || client == nil {
		return directExecutor{}
	}
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txnOpts)

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

type directExecutor struct{}

func (directExecutor) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	return fn(ctx)
}
