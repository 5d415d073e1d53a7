package mirror

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/metrics"
)

// Record is one public summary as stored in the mirror table.
type Record struct {
	ID             string  `dynamodbav:"id"`
	UID            string  `dynamodbav:"uid"`
	VolumeID       string  `dynamodbav:"volumeId"`
	OverallSummary *string `dynamodbav:"overallSummary"`
	IsPublic       bool    `dynamodbav:"isPublic"`
}

// RecordID is the mirror key for (uid, volumeID).
func RecordID(uid, volumeID string) string {
	return fmt.Sprintf("%s_%s", uid, volumeID)
}

// Mirror publishes and withdraws public summaries.
type Mirror struct {
	client  dynamoAPI
	table   string
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewMirror(client dynamoAPI, table string, logger *zap.Logger, collector *metrics.Collector) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{client: client, table: table, logger: logger, metrics: collector}
}

// Publish writes (or fully replaces) the public record for (uid, volumeID).
func (m *Mirror) Publish(ctx context.Context, uid, volumeID string, overallSummary *string) error {
	item, err := attributevalue.MarshalMap(Record{
		ID:             RecordID(uid, volumeID),
		UID:            uid,
		VolumeID:       volumeID,
		OverallSummary: overallSummary,
		IsPublic:       true,
	})
	if err != nil {
		return transportError("marshal record", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.table),
		Item:      item,
	})
	m.metrics.ObserveMirror("publish", err)
	if err != nil {
		return transportError("publish", err)
	}

	m.logger.Debug("published summary", zap.String("uid", uid), zap.String("volume_id", volumeID))
	return nil
}

// Unpublish removes the record for (uid, volumeID). Removing an absent
// record succeeds.
func (m *Mirror) Unpublish(ctx context.Context, uid, volumeID string) error {
	_, err := m.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(m.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: RecordID(uid, volumeID)},
		},
	})
	m.metrics.ObserveMirror("unpublish", err)
	if err != nil {
		return transportError("unpublish", err)
	}

	m.logger.Debug("unpublished summary", zap.String("uid", uid), zap.String("volume_id", volumeID))
	return nil
}

// ListPublic scans for up to limit public records.
func (m *Mirror) ListPublic(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}

	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("isPublic").Equal(expression.Value(true))).
		Build()
	if err != nil {
		return nil, transportError("build filter", err)
	}

	records := make([]Record, 0, limit)
	var startKey map[string]types.AttributeValue
	for {
		out, err := m.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(m.table),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		m.metrics.ObserveMirror("scan", err)
		if err != nil {
			return nil, transportError("scan", err)
		}

		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, transportError("unmarshal records", err)
		}
		for _, r := range page {
			records = append(records, r)
			if len(records) == limit {
				return records, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
