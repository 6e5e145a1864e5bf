package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTx implements service.Tx with a multi-document transaction. Requires
// the deployment to be a replica set (standalone mongod has no transactions).
type MongoTx struct {
	client *mongo.Client
}

func NewMongoTx(client *mongo.Client) *MongoTx {
	return &MongoTx{client: client}
}

// WithinTransaction runs fn inside one session; fn returning an error aborts
// the whole transaction, nil commits it.
func (t *MongoTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
