package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "icom:revoked:"

// RevocationList records token ids that must no longer be accepted.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationList struct {
	client redis.UniversalClient
}

// NewRedisRevocationList stores revoked ids as keys that expire together with the token.
func NewRedisRevocationList(client redis.UniversalClient) RevocationList {
	return &redisRevocationList{client: client}
}

func (r *redisRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (r *redisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type noopRevocationList struct {
	logger *zap.Logger
}

// NewNoopRevocationList is used when Redis is not configured. Tokens stay
// valid until they expire.
func NewNoopRevocationList(logger *zap.Logger) RevocationList {
	return noopRevocationList{logger: logger}
}

func (n noopRevocationList) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	n.logger.Debug("token revocation skipped; redis disabled", zap.String("jti", tokenID))
	return nil
}

func (noopRevocationList) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}
