package dynamodb

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
)

// fakeDynamoDB keeps items in memory, keyed by PK and SK.
type fakeDynamoDB struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	lastGet  *dynamodb.GetItemInput
	failWith error
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(item map[string]types.AttributeValue) string {
	pk := item["PK"].(*types.AttributeValueMemberS).Value
	sk := item["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeDynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastGet = in
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

var freshness = calendar.Freshness{TTL: time.Hour, MockTTL: 5 * time.Minute}

func testEntry(source calendar.Source) calendar.CacheEntry {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	tally := calendar.NewTally(calendar.NewWindow(now, time.UTC))
	tally.Set("2026-10-13", 6)
	return calendar.CacheEntry{
		Result:    calendar.NewResult("octocat", tally.Freeze()),
		CreatedAt: now,
		Source:    source,
	}
}

func TestCache_PutThenGet(t *testing.T) {
	// Arrange
	fake := newFakeDynamoDB()
	c := NewCache(fake, "calendar-cache", freshness, zap.NewNop())
	entry := testEntry(calendar.SourceGraphQL)

	// Act
	require.NoError(t, c.Put(context.Background(), "octocat", entry))
	got, found, err := c.Get(context.Background(), "octocat")

	// Assert
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.Result, got.Result)
	assert.Equal(t, entry.Source, got.Source)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))

	require.NotNil(t, fake.lastGet)
	assert.Equal(t, "calendar-cache", aws.ToString(fake.lastGet.TableName))
	assert.NotEmpty(t, aws.ToString(fake.lastGet.ProjectionExpression))
}

func TestCache_ItemLayout(t *testing.T) {
	fake := newFakeDynamoDB()
	c := NewCache(fake, "calendar-cache", freshness, zap.NewNop())
	entry := testEntry(calendar.SourceMock)

	require.NoError(t, c.Put(context.Background(), "octocat", entry))

	item, ok := fake.items["CALENDAR#"+calendar.CacheKey("octocat")+"|RESULT"]
	require.True(t, ok)
	ttl := item["TTL"].(*types.AttributeValueMemberN).Value
	assert.Equal(t, strconv.FormatInt(entry.CreatedAt.Add(freshness.MockTTL).Unix(), 10), ttl)
	assert.Equal(t, "mock", item["Source"].(*types.AttributeValueMemberS).Value)
}

func TestCache_MissingItemIsMiss(t *testing.T) {
	c := NewCache(newFakeDynamoDB(), "calendar-cache", freshness, zap.NewNop())

	_, found, err := c.Get(context.Background(), "octocat")

	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCache_APIErrorIsCacheUnavailable(t *testing.T) {
	// Arrange
	fake := newFakeDynamoDB()
	fake.failWith = &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down", Fault: smithy.FaultServer}
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewCache(fake, "calendar-cache", freshness, zap.New(core))

	// Act
	_, found, getErr := c.Get(context.Background(), "octocat")
	putErr := c.Put(context.Background(), "octocat", testEntry(calendar.SourceREST))

	// Assert
	assert.False(t, found)
	assert.True(t, apperrors.HasCode(getErr, apperrors.CodeCacheUnavailable))
	assert.True(t, apperrors.HasCode(putErr, apperrors.CodeCacheUnavailable))
	entries := logs.FilterMessage("DynamoDB cache call failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ProvisionedThroughputExceededException", entries[0].ContextMap()["error_code"])
}
