package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophfriends-server/internal/model"
)

func TestRecommendationKey(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, "gophfriends:recs:7:550e8400-e29b-41d4-a716-446655440000", recommendationKey(7, id))
	assert.NotEqual(t, recommendationKey(7, id), recommendationKey(8, id))
}

func TestRecommendationCodec(t *testing.T) {
	recs := []model.Recommendation{
		{User: model.PublicUser{ID: uuid.New(), Username: "carol"}, MutualCount: 2},
		{User: model.PublicUser{ID: uuid.New(), Username: "dave"}, MutualCount: 0},
	}

	data, err := encodeRecommendations(recs)
	require.NoError(t, err)

	got, err := decodeRecommendations(data)
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	_, err = decodeRecommendations([]byte("not json"))
	assert.ErrorContains(t, err, "failed to decode recommendations")
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Noop

	require.NoError(t, c.Set(ctx, 1, uuid.New(), nil))
	_, hit, err := c.Get(ctx, 1, uuid.New())
	require.NoError(t, err)
	assert.False(t, hit)
}
