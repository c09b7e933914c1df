package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartStore holds each user's cart as a set of course ids.
type CartStore interface {
	Add(ctx context.Context, userID, courseID uuid.UUID) error
	Remove(ctx context.Context, userID, courseID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type RedisCart struct {
	rdb *redis.Client
}

func NewRedisCart(rdb *redis.Client) *RedisCart {
	return &RedisCart{rdb: rdb}
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

func (c *RedisCart) Add(ctx context.Context, userID, courseID uuid.UUID) error {
	return c.rdb.SAdd(ctx, cartKey(userID), courseID.String()).Err()
}

func (c *RedisCart) Remove(ctx context.Context, userID, courseID uuid.UUID) error {
	return c.rdb.SRem(ctx, cartKey(userID), courseID.String()).Err()
}

func (c *RedisCart) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	members, err := c.rdb.SMembers(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	courseIDs := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		courseIDs = append(courseIDs, id)
	}
	return courseIDs, nil
}

func (c *RedisCart) Clear(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, cartKey(userID)).Err()
}
