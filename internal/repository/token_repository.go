package repository

import (
	"context"
	"fmt"
	"time"

	redisapp "elite_blog/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRepo keeps live refresh tokens and revoked access token ids.
// Every refresh token of an admin is also listed in a per-admin set so that
// logout can drop them without scanning the keyspace.
type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) SaveRefreshToken(ctx context.Context, adminID, token string, exp time.Duration) error {
	const op = "repository.RedisTokenRepo.SaveRefreshToken"

	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, refreshTokenKey(adminID, token), "1", exp)
		pipe.SAdd(ctx, adminTokensKey(adminID), token)
		pipe.Expire(ctx, adminTokensKey(adminID), exp)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisTokenRepo) GetRefreshToken(ctx context.Context, adminID, token string) (bool, error) {
	const op = "repository.RedisTokenRepo.GetRefreshToken"

	n, err := r.Client.Exists(ctx, refreshTokenKey(adminID, token)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

func (r *RedisTokenRepo) DeleteRefreshToken(ctx context.Context, adminID, token string) error {
	const op = "repository.RedisTokenRepo.DeleteRefreshToken"

	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, refreshTokenKey(adminID, token))
		pipe.SRem(ctx, adminTokensKey(adminID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisTokenRepo) DeleteAllAdminTokens(ctx context.Context, adminID string) error {
	const op = "repository.RedisTokenRepo.DeleteAllAdminTokens"

	tokens, err := r.Client.SMembers(ctx, adminTokensKey(adminID)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, refreshTokenKey(adminID, t))
	}
	keys = append(keys, adminTokensKey(adminID))

	if err := r.Client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RevokeAccessToken blacklists an access token id until it would expire anyway.
func (r *RedisTokenRepo) RevokeAccessToken(ctx context.Context, jti string, ttl time.Duration) error {
	const op = "repository.RedisTokenRepo.RevokeAccessToken"

	if ttl <= 0 {
		return nil
	}

	if err := r.Client.Set(ctx, revokedTokenKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisTokenRepo) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	const op = "repository.RedisTokenRepo.IsAccessTokenRevoked"

	n, err := r.Client.Exists(ctx, revokedTokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

func refreshTokenKey(adminID, token string) string {
	return "auth:refresh:" + adminID + ":" + token
}

func adminTokensKey(adminID string) string {
	return "auth:admin:" + adminID + ":refresh"
}

func revokedTokenKey(jti string) string {
	return "auth:revoked:" + jti
}
