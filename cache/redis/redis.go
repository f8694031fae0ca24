package redis

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zlnvch/stylussphere/cache"
)

type RedisStylusCache struct {
	client redis.UniversalClient
}

func NewRedisStylusCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisStylusCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisStylusCache{client: client}, nil
}

func (redisCache *RedisStylusCache) Publish(ctx context.Context, channel string, message []byte) error {
	if err := redisCache.client.Publish(ctx, channel, message).Err(); err != nil {
		return err
	}
	return nil
}

func (redisCache *RedisStylusCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	pubsub := redisCache.client.Subscribe(ctx, channel)
	// Ensure subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		log.Printf("Pubsub channel closed: %s", channel)
		return err
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}

func buildSessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (redisCache *RedisStylusCache) SetSession(ctx context.Context, sessionId string, username string, ttl time.Duration) error {
	return redisCache.client.Set(ctx, buildSessionKey(sessionId), username, ttl).Err()
}

func (redisCache *RedisStylusCache) GetSession(ctx context.Context, sessionId string) (string, error) {
	val, err := redisCache.client.Get(ctx, buildSessionKey(sessionId)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", cache.ErrSessionNotFound
		}
		return "", err
	}
	return val, nil
}

func (redisCache *RedisStylusCache) DeleteSession(ctx context.Context, sessionId string) error {
	return redisCache.client.Del(ctx, buildSessionKey(sessionId)).Err()
}
