package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore persists reservations in a DynamoDB table keyed by code, with
// expires_at as the table's TTL attribute for garbage collection.
type DynamoStore struct {
	svc   *dynamodb.Client
	table string
	now   func() time.Time
}

// NewDynamoStore loads the default AWS config and targets the given table.
func NewDynamoStore(ctx context.Context, table string) (*DynamoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &DynamoStore{
		svc:   dynamodb.NewFromConfig(cfg),
		table: table,
		now:   time.Now,
	}, nil
}

func (s *DynamoStore) Put(ctx context.Context, rec Record) error {
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// The condition takes over from application-level uniqueness checks:
	// the code must be absent or already past its TTL.
	_, err = s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(code) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", s.now().Unix())},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrCodeTaken
		}
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, code string) (Record, error) {
	out, err := s.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	if out.Item == nil {
		return Record{}, ErrNotFound
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	// DynamoDB TTL deletion lags; treat stale items as gone.
	if rec.Expired(s.now()) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}
