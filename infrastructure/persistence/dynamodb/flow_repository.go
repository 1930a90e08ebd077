package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"flowforge-backend/application/ports"
	"flowforge-backend/domain/comments"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/versioning"
	pkgerrors "flowforge-backend/pkg/errors"
)

// Sort keys for a flow's logical records
const (
	skNodes    = "NODES"
	skEdges    = "EDGES"
	skHistory  = "HISTORY"
	skComments = "COMMENTS"
	skMeta     = "META"
)

// FlowRepository implements ports.FlowRepository on a single DynamoDB table
type FlowRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.FlowRepository = (*FlowRepository)(nil)

// NewFlowRepository creates a new FlowRepository
func NewFlowRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *FlowRepository {
	return &FlowRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// blobItem is the DynamoDB item shape for a flow's JSON records
type blobItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Data       string `dynamodbav:"Data"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func flowPK(flowID string) string {
	return fmt.Sprintf("FLOW#%s", flowID)
}

// putBlob writes one logical record. DynamoDB size-limit rejections are
// translated to STORAGE_FULL so the session layer can surface them as a
// warning instead of a generic failure.
func (r *FlowRepository) putBlob(ctx context.Context, flowID, sk string, blob []byte) error {
	item, err := attributevalue.MarshalMap(blobItem{
		PK:         flowPK(flowID),
		SK:         sk,
		EntityType: sk,
		Data:       string(blob),
		UpdatedAt:  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "marshal item")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		if isSizeLimitError(err) {
			return pkgerrors.NewStorageFullError(fmt.Sprintf("flow_%s_%s", flowID, strings.ToLower(sk)))
		}
		return pkgerrors.NewDatabaseError("put "+sk, err)
	}
	return nil
}

// getBlob reads one logical record; a missing item is NOT_FOUND
func (r *FlowRepository) getBlob(ctx context.Context, flowID, sk string) ([]byte, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: flowPK(flowID)},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get "+sk, err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("flow %s %s", flowID, strings.ToLower(sk)))
	}

	var item blobItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "unmarshal item")
	}
	return []byte(item.Data), nil
}

// isSizeLimitError reports whether the write failed on an item or partition
// size limit
func isSizeLimitError(err error) bool {
	var collectionLimit *types.ItemCollectionSizeLimitExceededException
	if errors.As(err, &collectionLimit) {
		return true
	}
	return strings.Contains(err.Error(), "exceeded the maximum allowed size")
}

// LoadGraph implements ports.FlowRepository
func (r *FlowRepository) LoadGraph(ctx context.Context, flowID string) (aggregates.Flow, error) {
	rawNodes, nodesErr := r.getBlob(ctx, flowID, skNodes)
	rawEdges, edgesErr := r.getBlob(ctx, flowID, skEdges)
	if pkgerrors.IsNotFound(nodesErr) && pkgerrors.IsNotFound(edgesErr) {
		return aggregates.Flow{}, pkgerrors.NewNotFoundError("flow " + flowID)
	}

	flow := aggregates.NewFlow()
	if nodesErr == nil {
		if err := json.Unmarshal(rawNodes, &flow.Nodes); err != nil {
			return aggregates.Flow{}, pkgerrors.Wrap(err, "decode nodes")
		}
	} else if !pkgerrors.IsNotFound(nodesErr) {
		return aggregates.Flow{}, nodesErr
	}
	if edgesErr == nil {
		if err := json.Unmarshal(rawEdges, &flow.Edges); err != nil {
			return aggregates.Flow{}, pkgerrors.Wrap(err, "decode edges")
		}
	} else if !pkgerrors.IsNotFound(edgesErr) {
		return aggregates.Flow{}, edgesErr
	}
	return flow, nil
}

// SaveGraph implements ports.FlowRepository
func (r *FlowRepository) SaveGraph(ctx context.Context, flowID string, flow aggregates.Flow) error {
	rawNodes, err := json.Marshal(flow.Nodes)
	if err != nil {
		return pkgerrors.Wrap(err, "encode nodes")
	}
	rawEdges, err := json.Marshal(flow.Edges)
	if err != nil {
		return pkgerrors.Wrap(err, "encode edges")
	}

	if err := r.putBlob(ctx, flowID, skNodes, rawNodes); err != nil {
		return err
	}
	return r.putBlob(ctx, flowID, skEdges, rawEdges)
}

// LoadHistory implements ports.FlowRepository
func (r *FlowRepository) LoadHistory(ctx context.Context, flowID string) ([]versioning.Version, error) {
	raw, err := r.getBlob(ctx, flowID, skHistory)
	if err != nil {
		return nil, err
	}
	var versions []versioning.Version
	if err := json.Unmarshal(raw, &versions); err != nil {
		return nil, pkgerrors.Wrap(err, "decode history")
	}
	return versions, nil
}

// SaveHistory implements ports.FlowRepository
func (r *FlowRepository) SaveHistory(ctx context.Context, flowID string, versions []versioning.Version) error {
	raw, err := json.Marshal(versions)
	if err != nil {
		return pkgerrors.Wrap(err, "encode history")
	}
	return r.putBlob(ctx, flowID, skHistory, raw)
}

// LoadComments implements ports.FlowRepository
func (r *FlowRepository) LoadComments(ctx context.Context, flowID string) ([]comments.Comment, error) {
	raw, err := r.getBlob(ctx, flowID, skComments)
	if err != nil {
		return nil, err
	}
	var threads []comments.Comment
	if err := json.Unmarshal(raw, &threads); err != nil {
		return nil, pkgerrors.Wrap(err, "decode comments")
	}
	return threads, nil
}

// SaveComments implements ports.FlowRepository
func (r *FlowRepository) SaveComments(ctx context.Context, flowID string, threads []comments.Comment) error {
	raw, err := json.Marshal(threads)
	if err != nil {
		return pkgerrors.Wrap(err, "encode comments")
	}
	return r.putBlob(ctx, flowID, skComments, raw)
}

// GetFlowInfo implements ports.FlowRepository
func (r *FlowRepository) GetFlowInfo(ctx context.Context, flowID string) (entities.FlowInfo, error) {
	raw, err := r.getBlob(ctx, flowID, skMeta)
	if err != nil {
		return entities.FlowInfo{}, err
	}
	var info entities.FlowInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return entities.FlowInfo{}, pkgerrors.Wrap(err, "decode flow info")
	}
	return info, nil
}

// PutFlowInfo implements ports.FlowRepository
func (r *FlowRepository) PutFlowInfo(ctx context.Context, info entities.FlowInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return pkgerrors.Wrap(err, "encode flow info")
	}
	return r.putBlob(ctx, info.ID, skMeta, raw)
}

// ListFlows implements ports.FlowRepository. A filtered scan is acceptable at
// per-operator catalog sizes.
func (r *FlowRepository) ListFlows(ctx context.Context) ([]entities.FlowInfo, error) {
	infos := []entities.FlowInfo{}

	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("SK = :meta"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":meta": &types.AttributeValueMemberS{Value: skMeta},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan flows", err)
		}

		for _, rawItem := range out.Items {
			var item blobItem
			if err := attributevalue.UnmarshalMap(rawItem, &item); err != nil {
				r.logger.Warn("skipping undecodable catalog item", zap.Error(err))
				continue
			}
			var info entities.FlowInfo
			if err := json.Unmarshal([]byte(item.Data), &info); err != nil {
				r.logger.Warn("skipping corrupt catalog record",
					zap.String("pk", item.PK),
					zap.Error(err),
				)
				continue
			}
			infos = append(infos, info)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return infos, nil
}

// DeleteFlow implements ports.FlowRepository
func (r *FlowRepository) DeleteFlow(ctx context.Context, flowID string) error {
	for _, sk := range []string{skNodes, skEdges, skHistory, skComments, skMeta} {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: flowPK(flowID)},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("delete "+sk, err)
		}
	}
	return nil
}
