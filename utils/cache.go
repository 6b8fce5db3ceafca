// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"phonedesk/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionClient holds live call sessions.
	SessionClient *redis.Client
	// AudioClient is the shared tier of the synthesized-speech cache.
	AudioClient *redis.Client
)

func newRedisClient(db int, label string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", label, err)
	}
	return client
}

// InitRedis connects every Redis database the engine uses.
func InitRedis() {
	SessionClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session")
	AudioClient = newRedisClient(config.AppConfig.RedisAudioDB, "Audio")
}

// GetSessionClient returns the Redis client for call sessions.
func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		SessionClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session")
	}
	return SessionClient
}

// GetAudioClient returns the Redis client for cached audio.
func GetAudioClient() *redis.Client {
	if AudioClient == nil {
		AudioClient = newRedisClient(config.AppConfig.RedisAudioDB, "Audio")
	}
	return AudioClient
}
