// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"receptionist/config"

	"github.com/go-redis/redis/v8"
)

// CallStateClient is the Redis client backing the per-call conversation state.
var CallStateClient *redis.Client

// InitCallStateCache initializes the Redis client for call-state storage.
func InitCallStateCache() {
	CallStateClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCallStateDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CallStateClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Call State): %v", err)
	}
}

// GetCallStateClient returns the call-state Redis client.
func GetCallStateClient() *redis.Client {
	if CallStateClient == nil {
		InitCallStateCache()
	}
	return CallStateClient
}
