// Package dynamodb persists flows in a single DynamoDB table. One partition
// per flow (PK FLOW#{id}) with one item per logical key (SK NODES, EDGES,
// HISTORY, COMMENTS, META) plus a global counter item for node ids.
package dynamodb

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	pkgerrors "flowforge-backend/pkg/errors"
)

// NewClient creates a DynamoDB client for the given region
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load aws config")
	}
	return dynamodb.NewFromConfig(cfg), nil
}
