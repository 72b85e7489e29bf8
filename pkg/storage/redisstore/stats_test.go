package redisstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_IncrementEventCount(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, agg.IncrementEventCount(ctx, "click"))
	}

	count, ok, err := agg.EventCount(ctx, "click")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), count)
}

func TestAggregator_EventCountAbsent(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)

	count, ok, err := agg.EventCount(context.Background(), "unknown_type")
	require.NoError(t, err)
	assert.False(t, ok, "never-incremented type must report absent, not zero")
	assert.Equal(t, int64(0), count)
}

func TestAggregator_IncrementUserActivity(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, agg.IncrementUserActivity(ctx, 7))
	}

	score, ok, err := agg.UserActivity(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(3), score)
}

func TestAggregator_UserActivityAbsent(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)

	_, ok, err := agg.UserActivity(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAggregator_IncrementBulk(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)
	ctx := context.Background()

	events := []BulkEvent{
		{EventType: "click", UserID: 1},
		{EventType: "click", UserID: 2},
		{EventType: "view", UserID: 1},
	}
	require.NoError(t, agg.IncrementBulk(ctx, events))

	clicks, ok, err := agg.EventCount(ctx, "click")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), clicks)

	views, ok, err := agg.EventCount(ctx, "view")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), views)

	score, ok, err := agg.UserActivity(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(2), score)
}

func TestAggregator_IncrementBulkEmpty(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)
	require.NoError(t, agg.IncrementBulk(context.Background(), nil))
}

func TestAggregator_TrackUniqueUser(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	agg := NewAggregator(client)
	ctx := context.Background()

	require.NoError(t, agg.TrackUniqueUser(ctx, 1))
	require.NoError(t, agg.TrackUniqueUser(ctx, 2))
	require.NoError(t, agg.TrackUniqueUser(ctx, 1)) // duplicate

	n, err := agg.UniqueUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
