package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection for sessions, OAuth state and rate limiting.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

const (
	refreshTokenPrefix = "refresh:"
	oauthStatePrefix   = "oauth_state:"
)

var (
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrStateNotFound = errors.New("oauth state not found")
)

// StoreRefreshToken stores a refresh token mapped to a user ID with an expiry.
func (c *Client) StoreRefreshToken(ctx context.Context, token string, userID int64, expiry time.Duration) error {
	return c.rdb.Set(ctx, refreshTokenPrefix+token, userID, expiry).Err()
}

// GetRefreshTokenUserID returns the user ID associated with a refresh token.
func (c *Client) GetRefreshTokenUserID(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, refreshTokenPrefix+token).Result()
	if err == goredis.Nil {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("getting refresh token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing user ID: %w", err)
	}
	return userID, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (c *Client) DeleteRefreshToken(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, refreshTokenPrefix+token).Err()
}

// rateLimitScript increments a counter, sets its TTL on first use and
// returns the count with the remaining TTL in milliseconds.
var rateLimitScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RateLimit is the state of one fixed-window counter after a hit.
type RateLimit struct {
	Allowed bool
	Count   int64
	ResetIn time.Duration
}

// CheckRateLimit counts a request under key and reports whether it fits in
// the current window of limit requests.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (RateLimit, error) {
	vals, err := rateLimitScript.Run(ctx, c.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return RateLimit{}, fmt.Errorf("checking rate limit: %w", err)
	}
	if len(vals) != 2 {
		return RateLimit{}, fmt.Errorf("checking rate limit: unexpected reply %v", vals)
	}
	ttl := vals[1]
	if ttl < 0 {
		ttl = window.Milliseconds()
	}
	return RateLimit{
		Allowed: vals[0] <= int64(limit),
		Count:   vals[0],
		ResetIn: time.Duration(ttl) * time.Millisecond,
	}, nil
}

// StoreOAuthState records the provider an authorization request was started
// for. The state is valid for one callback within ttl.
func (c *Client) StoreOAuthState(ctx context.Context, state, provider string, ttl time.Duration) error {
	return c.rdb.Set(ctx, oauthStatePrefix+state, provider, ttl).Err()
}

// ConsumeOAuthState returns the provider bound to state and deletes it.
// It returns ErrStateNotFound for unknown or expired states.
func (c *Client) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	val, err := c.rdb.GetDel(ctx, oauthStatePrefix+state).Result()
	if err == goredis.Nil {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consuming oauth state: %w", err)
	}
	return val, nil
}
