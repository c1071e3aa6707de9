package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner executes a function inside a multi-document transaction.
// Requires a replica set or mongos; standalone servers reject sessions.
type TxnRunner struct {
	client *mongo.Client
}

func NewTxnRunner(db *mongo.Database) *TxnRunner {
	return &TxnRunner{client: db.Client()}
}

// WithTransaction runs fn inside one transaction. The context passed to
// fn is a session context: every repository call made with it joins the
// transaction, and all writes commit or abort together.
func (t *TxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
