// api/db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func cacheTTL() time.Duration {
	ttl := viper.GetDuration("redis.defaultCacheTTL")
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return ttl
}

func setEncrypted(ctx context.Context, key string, value interface{}) error {
	if RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt value for %s: %w", key, err)
	}

	return RedisClient.Set(ctx, key, encrypted, cacheTTL()).Err()
}

func getEncrypted(ctx context.Context, key string, out interface{}) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}
	raw, err := RedisClient.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache for %s: %w", key, err)
	}

	data, err := decrypt(raw)
	if err != nil {
		return false, fmt.Errorf("failed to decrypt cache for %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache for %s: %w", key, err)
	}
	return true, nil
}

func CacheObject(ctx context.Context, obj *model.Object) error {
	return setEncrypted(ctx, fmt.Sprintf("object:%s", obj.ID.ID), obj)
}

func GetCachedObject(ctx context.Context, objectID string) (*model.Object, error) {
	var obj model.Object
	found, err := getEncrypted(ctx, fmt.Sprintf("object:%s", objectID), &obj)
	if err != nil || !found {
		return nil, err
	}
	return &obj, nil
}

func DeleteCachedObject(ctx context.Context, objectID string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, fmt.Sprintf("object:%s", objectID)).Err()
}

func CacheUser(ctx context.Context, user *model.User) error {
	return setEncrypted(ctx, fmt.Sprintf("user:%s", user.ID.Key()), user)
}

func GetCachedUser(ctx context.Context, userKey string) (*model.User, error) {
	var user model.User
	found, err := getEncrypted(ctx, fmt.Sprintf("user:%s", userKey), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func DeleteCachedUser(ctx context.Context, userKey string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, fmt.Sprintf("user:%s", userKey)).Err()
}

// FlushCachedObjects drops every cached object entry. Used by the bulk
// delete-all administrative operation.
func FlushCachedObjects(ctx context.Context) error {
	if RedisClient == nil {
		return nil
	}
	iter := RedisClient.Scan(ctx, 0, "object:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
