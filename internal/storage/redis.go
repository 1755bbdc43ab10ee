package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobper/jobper-dashboard/internal/config"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
)

const redisOpTimeout = 3 * time.Second

// Redis хранилище состояния сессии в redis. Используется, когда несколько
// экземпляров шлюза должны разделять одну сессию. Контракт тот же:
// ошибки логируются и деградируют до нулевого значения.
type Redis struct {
	db  *redis.Client
	log *slog.Logger
}

// NewRedis подключается к redis и возвращает хранилище.
func NewRedis(ctx context.Context, cfg config.RedisConnection, log *slog.Logger) (*Redis, error) {
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})
	if err := db.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{db: db, log: log}, nil
}

// SaveTokens сохраняет пару токенов.
func (r *Redis) SaveTokens(access, refresh string) {
	const op = "storage.redis.SaveTokens"
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.db.MSet(ctx, KeyAccessToken, access, KeyRefreshToken, refresh).Err(); err != nil {
		r.log.Error("failed to save tokens", slog.String("op", op), sl.Err(err))
	}
}

// AccessToken возвращает access-токен или пустую строку.
func (r *Redis) AccessToken() string {
	return r.get(KeyAccessToken)
}

// RefreshToken возвращает refresh-токен или пустую строку.
func (r *Redis) RefreshToken() string {
	return r.get(KeyRefreshToken)
}

// ClearTokens удаляет оба токена.
func (r *Redis) ClearTokens() {
	r.del("storage.redis.ClearTokens", KeyAccessToken, KeyRefreshToken)
}

// SaveUser кэширует профиль пользователя.
func (r *Redis) SaveUser(u *models.User) {
	const op = "storage.redis.SaveUser"
	if u == nil {
		r.del(op, KeyUser)
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		r.log.Error("failed to marshal user", slog.String("op", op), sl.Err(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.db.Set(ctx, KeyUser, data, 0).Err(); err != nil {
		r.log.Error("failed to save user", slog.String("op", op), sl.Err(err))
	}
}

// User возвращает кэшированный профиль или nil, повреждённый JSON деградирует до nil.
func (r *Redis) User() *models.User {
	const op = "storage.redis.User"
	raw := r.get(KeyUser)
	if raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		r.log.Warn("corrupt cached user, degrading to nil", slog.String("op", op), sl.Err(err))
		return nil
	}
	return &u
}

// ClearUser удаляет кэшированный профиль.
func (r *Redis) ClearUser() {
	r.del("storage.redis.ClearUser", KeyUser)
}

// ClearAll удаляет токены и профиль.
func (r *Redis) ClearAll() {
	r.del("storage.redis.ClearAll", KeyAccessToken, KeyRefreshToken, KeyUser)
}

func (r *Redis) get(key string) string {
	const op = "storage.redis.get"
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	val, err := r.db.Get(ctx, key).Result()
	if err == redis.Nil {
		return ""
	}
	if err != nil {
		r.log.Warn("failed to read key", slog.String("op", op), slog.String("key", key), sl.Err(err))
		return ""
	}
	return val
}

func (r *Redis) del(op string, keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.db.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("failed to delete keys", slog.String("op", op), sl.Err(err))
	}
}
