package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"lamad-backend/domain/core/aggregates"
	"lamad-backend/domain/core/entities"
)

// Item key prefixes in the single-table layout
const (
	graphPartition     = "GRAPH"
	nodeSortPrefix     = "NODE#"
	relationSortPrefix = "REL#"
)

// GraphSnapshotRepository materializes content-graph snapshots from a
// DynamoDB single-table layout. Every GetGraph call reads the full
// partition and builds a fresh immutable snapshot.
type GraphSnapshotRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewGraphSnapshotRepository creates a new snapshot repository
func NewGraphSnapshotRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *GraphSnapshotRepository {
	return &GraphSnapshotRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// nodeItem is the DynamoDB item structure for a content node
type nodeItem struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	NodeID   string `dynamodbav:"NodeID"`
	Title    string `dynamodbav:"Title"`
	NodeType string `dynamodbav:"NodeType"`
	Body     string `dynamodbav:"Body"`
}

// relationshipItem is the DynamoDB item structure for a relationship
type relationshipItem struct {
	PK             string                 `dynamodbav:"PK"`
	SK             string                 `dynamodbav:"SK"`
	RelationshipID string                 `dynamodbav:"RelationshipID"`
	SourceID       string                 `dynamodbav:"SourceID"`
	TargetID       string                 `dynamodbav:"TargetID"`
	Type           string                 `dynamodbav:"RelType"`
	Metadata       map[string]interface{} `dynamodbav:"Metadata,omitempty"`
}

// GetGraph loads all node and relationship items and assembles the
// snapshot. Unparseable items are skipped with a warning rather than
// failing the whole snapshot.
func (r *GraphSnapshotRepository) GetGraph(ctx context.Context) (*aggregates.ContentGraph, error) {
	var nodes []entities.ContentNode
	var relationships []entities.ContentRelationship

	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: graphPartition},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query graph partition: %w", err)
		}

		for _, item := range out.Items {
			sk, ok := item["SK"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}

			switch {
			case strings.HasPrefix(sk.Value, nodeSortPrefix):
				var n nodeItem
				if err := attributevalue.UnmarshalMap(item, &n); err != nil {
					r.logger.Warn("skipping unparseable node item", zap.Error(err))
					continue
				}
				nodes = append(nodes, entities.ContentNode{
					ID:       n.NodeID,
					Title:    n.Title,
					NodeType: n.NodeType,
					Body:     n.Body,
				})

			case strings.HasPrefix(sk.Value, relationSortPrefix):
				var rel relationshipItem
				if err := attributevalue.UnmarshalMap(item, &rel); err != nil {
					r.logger.Warn("skipping unparseable relationship item", zap.Error(err))
					continue
				}
				relationships = append(relationships, entities.ContentRelationship{
					ID:       rel.RelationshipID,
					SourceID: rel.SourceID,
					TargetID: rel.TargetID,
					Type:     entities.RelationshipType(rel.Type),
					Metadata: rel.Metadata,
				})
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	r.logger.Debug("graph snapshot loaded",
		zap.Int("nodes", len(nodes)),
		zap.Int("relationships", len(relationships)),
	)

	return aggregates.NewContentGraph(nodes, relationships), nil
}
