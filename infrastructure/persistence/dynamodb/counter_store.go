package dynamodb

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"flowforge-backend/application/ports"
	pkgerrors "flowforge-backend/pkg/errors"
)

const (
	counterPK = "COUNTER"
	counterSK = "lastNodeId"
)

// CounterStore persists the global node-id counter as a single item.
// Last-writer-wins across editors is the accepted consistency level.
type CounterStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.CounterStore = (*CounterStore)(nil)

// NewCounterStore creates a counter store
func NewCounterStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *CounterStore {
	return &CounterStore{client: client, tableName: tableName, logger: logger}
}

// LoadCounter implements ports.CounterStore; a missing item means zero
func (s *CounterStore) LoadCounter(ctx context.Context) (uint64, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: counterPK},
			"SK": &types.AttributeValueMemberS{Value: counterSK},
		},
	})
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("get counter", err)
	}
	if out.Item == nil {
		return 0, nil
	}

	attr, ok := out.Item["Value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, pkgerrors.NewDatabaseError("get counter", nil).WithCode("MALFORMED_COUNTER")
	}
	value, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "parse counter")
	}
	return value, nil
}

// StoreCounter implements ports.CounterStore
func (s *CounterStore) StoreCounter(ctx context.Context, value uint64) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"PK":    &types.AttributeValueMemberS{Value: counterPK},
			"SK":    &types.AttributeValueMemberS{Value: counterSK},
			"Value": &types.AttributeValueMemberN{Value: strconv.FormatUint(value, 10)},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("put counter", err)
	}
	return nil
}
