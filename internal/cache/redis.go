package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/gophfriends-server/internal/model"
)

const (
	keyPrefix   = "gophfriends"
	pingTimeout = 5 * time.Second
)

var _ model.RecommendationCache = (*Redis)(nil)

// Options holds Redis connection parameters.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and verifies it with a ping.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

// Redis caches recommendation lists under a graph version. Entries expire
// after ttl; stale versions are simply never asked for.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

type cachedRecommendation struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	MutualCount int       `json:"mutual_count"`
}

func (c *Redis) Get(ctx context.Context, version int64, userID uuid.UUID) ([]model.Recommendation, bool, error) {
	data, err := c.client.Get(ctx, recommendationKey(version, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read recommendations: %w", err)
	}

	recs, err := decodeRecommendations(data)
	if err != nil {
		return nil, false, err
	}
	return recs, true, nil
}

func (c *Redis) Set(ctx context.Context, version int64, userID uuid.UUID, recs []model.Recommendation) error {
	data, err := encodeRecommendations(recs)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, recommendationKey(version, userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store recommendations: %w", err)
	}
	return nil
}

func recommendationKey(version int64, userID uuid.UUID) string {
	return fmt.Sprintf("%s:recs:%d:%s", keyPrefix, version, userID)
}

func encodeRecommendations(recs []model.Recommendation) ([]byte, error) {
	out := make([]cachedRecommendation, len(recs))
	for i, r := range recs {
		out[i] = cachedRecommendation{ID: r.User.ID, Username: r.User.Username, MutualCount: r.MutualCount}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}
	return data, nil
}

func decodeRecommendations(data []byte) ([]model.Recommendation, error) {
	var in []cachedRecommendation
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}

	recs := make([]model.Recommendation, len(in))
	for i, r := range in {
		recs[i] = model.Recommendation{
			User:        model.PublicUser{ID: r.ID, Username: r.Username},
			MutualCount: r.MutualCount,
		}
	}
	return recs, nil
}
