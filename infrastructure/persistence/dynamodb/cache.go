// Package dynamodb stores calendar results in a DynamoDB table, one item per
// queried identity.
package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
)

const resultSortKey = "RESULT"

// API is the subset of the DynamoDB client used by the cache.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ddbCacheItem represents the structure of a cached calendar in DynamoDB
type ddbCacheItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Result    string `dynamodbav:"Result"`
	Source    string `dynamodbav:"Source"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	TTL       int64  `dynamodbav:"TTL"`
}

// Cache is a DynamoDB-backed ResponseCache. PutItem replaces the whole
// item, so concurrent writers for one identity resolve to last write wins.
// The TTL attribute lets DynamoDB expire items on its own schedule;
// freshness is still decided by the caller from CreatedAt.
type Cache struct {
	client    API
	tableName string
	freshness calendar.Freshness
	logger    *zap.Logger
}

// NewCache creates a DynamoDB response cache
func NewCache(client API, tableName string, freshness calendar.Freshness, logger *zap.Logger) *Cache {
	return &Cache{
		client:    client,
		tableName: tableName,
		freshness: freshness,
		logger:    logger,
	}
}

func partitionKey(identity string) string {
	return fmt.Sprintf("CALENDAR#%s", calendar.CacheKey(identity))
}

func itemKey(identity string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(identity)},
		"SK": &types.AttributeValueMemberS{Value: resultSortKey},
	}
}

// Get implements ResponseCache.Get
func (c *Cache) Get(ctx context.Context, identity string) (calendar.CacheEntry, bool, error) {
	proj := expression.NamesList(
		expression.Name("Result"),
		expression.Name("Source"),
		expression.Name("CreatedAt"),
	)
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("read", err)
	}

	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(c.tableName),
		Key:                      itemKey(identity),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		c.logAPIError("GetItem", err)
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("read", err)
	}
	if out.Item == nil {
		return calendar.CacheEntry{}, false, nil
	}

	var item ddbCacheItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("decode", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("decode", err)
	}

	var result calendar.Result
	if err := json.Unmarshal([]byte(item.Result), &result); err != nil {
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("decode", err)
	}

	return calendar.CacheEntry{
		Result:    result,
		CreatedAt: createdAt,
		Source:    calendar.Source(item.Source),
	}, true, nil
}

// Put implements ResponseCache.Put
func (c *Cache) Put(ctx context.Context, identity string, entry calendar.CacheEntry) error {
	resultBytes, err := json.Marshal(entry.Result)
	if err != nil {
		return apperrors.NewCacheUnavailableError("encode", err)
	}

	item := ddbCacheItem{
		PK:        partitionKey(identity),
		SK:        resultSortKey,
		Result:    string(resultBytes),
		Source:    entry.Source.String(),
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		TTL:       entry.CreatedAt.Add(c.freshness.TTLFor(entry.Source)).Unix(),
	}

	itemMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewCacheUnavailableError("encode", err)
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      itemMap,
	}); err != nil {
		c.logAPIError("PutItem", err)
		return apperrors.NewCacheUnavailableError("write", err)
	}

	return nil
}

func (c *Cache) logAPIError(operation string, err error) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("table", c.tableName),
		zap.Error(err),
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.String("error_code", apiErr.ErrorCode()),
			zap.String("fault", apiErr.ErrorFault().String()),
		)
	}
	c.logger.Warn("DynamoDB cache call failed", fields...)
}
