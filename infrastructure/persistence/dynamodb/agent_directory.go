package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"lamad-backend/application/ports"
)

const agentPartition = "AGENT"

// AgentDirectory reads agent attestation records from the same
// single-table layout as the graph snapshot.
type AgentDirectory struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewAgentDirectory creates a new DynamoDB-backed agent directory
func NewAgentDirectory(client *dynamodb.Client, tableName string, logger *zap.Logger) *AgentDirectory {
	return &AgentDirectory{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// agentItem is the DynamoDB item structure for one agent record
type agentItem struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	AgentID      string   `dynamodbav:"AgentID"`
	Attestations []string `dynamodbav:"Attestations"`
}

// GetAgentIndex returns all agents with their attestations. Callers
// treat any failure as "no attestations found", so this method only
// reports the error without retrying.
func (d *AgentDirectory) GetAgentIndex(ctx context.Context) ([]ports.AgentRecord, error) {
	var records []ports.AgentRecord

	var lastKey map[string]types.AttributeValue
	for {
		out, err := d.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: agentPartition},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query agent partition: %w", err)
		}

		for _, item := range out.Items {
			var a agentItem
			if err := attributevalue.UnmarshalMap(item, &a); err != nil {
				d.logger.Warn("skipping unparseable agent item", zap.Error(err))
				continue
			}
			records = append(records, ports.AgentRecord{
				ID:           a.AgentID,
				Attestations: a.Attestations,
			})
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	return records, nil
}
