package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
)

const pgOpTimeout = 3 * time.Second

// Postgres хранилище состояния сессии в таблице dashboard_state (key/value).
// Применяется в развёртываниях, где состояние шлюза должно переживать рестарты
// и разделяться между экземплярами. Схему создаёт internal/migrations.
type Postgres struct {
	DB  *sql.DB
	log *slog.Logger
}

// NewPostgres подключается к PostgreSQL и возвращает хранилище.
func NewPostgres(connectionString string, log *slog.Logger) (*Postgres, error) {
	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, err
	}
	return &Postgres{DB: db, log: log}, nil
}

// SaveTokens сохраняет пару токенов в одной транзакции.
func (p *Postgres) SaveTokens(access, refresh string) {
	const op = "storage.postgres.SaveTokens"
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		p.log.Error("failed to begin tx", slog.String("op", op), sl.Err(err))
		return
	}
	for key, val := range map[string]string{KeyAccessToken: access, KeyRefreshToken: refresh} {
		if _, err := tx.ExecContext(ctx, upsertQuery, key, val); err != nil {
			p.log.Error("failed to upsert key", slog.String("op", op), slog.String("key", key), sl.Err(err))
			_ = tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		p.log.Error("failed to commit tx", slog.String("op", op), sl.Err(err))
	}
}

const upsertQuery = `INSERT INTO dashboard_state (key, value)
		  VALUES ($1, $2)
		  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

// AccessToken возвращает access-токен или пустую строку.
func (p *Postgres) AccessToken() string {
	return p.get(KeyAccessToken)
}

// RefreshToken возвращает refresh-токен или пустую строку.
func (p *Postgres) RefreshToken() string {
	return p.get(KeyRefreshToken)
}

// ClearTokens удаляет оба токена.
func (p *Postgres) ClearTokens() {
	p.del("storage.postgres.ClearTokens", KeyAccessToken, KeyRefreshToken)
}

// SaveUser кэширует профиль пользователя.
func (p *Postgres) SaveUser(u *models.User) {
	const op = "storage.postgres.SaveUser"
	if u == nil {
		p.del(op, KeyUser)
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		p.log.Error("failed to marshal user", slog.String("op", op), sl.Err(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()
	if _, err := p.DB.ExecContext(ctx, upsertQuery, KeyUser, string(data)); err != nil {
		p.log.Error("failed to save user", slog.String("op", op), sl.Err(err))
	}
}

// User возвращает кэшированный профиль или nil, повреждённый JSON деградирует до nil.
func (p *Postgres) User() *models.User {
	const op = "storage.postgres.User"
	raw := p.get(KeyUser)
	if raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		p.log.Warn("corrupt cached user, degrading to nil", slog.String("op", op), sl.Err(err))
		return nil
	}
	return &u
}

// ClearUser удаляет кэшированный профиль.
func (p *Postgres) ClearUser() {
	p.del("storage.postgres.ClearUser", KeyUser)
}

// ClearAll удаляет токены и профиль.
func (p *Postgres) ClearAll() {
	p.del("storage.postgres.ClearAll", KeyAccessToken, KeyRefreshToken, KeyUser)
}

func (p *Postgres) get(key string) string {
	const op = "storage.postgres.get"
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	var value string
	query := `SELECT value FROM dashboard_state WHERE key = $1`
	err := p.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return ""
	}
	if err != nil {
		p.log.Warn("failed to read key", slog.String("op", op), slog.String("key", key), sl.Err(err))
		return ""
	}
	return value
}

func (p *Postgres) del(op string, keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	query := `DELETE FROM dashboard_state WHERE key = $1`
	for _, key := range keys {
		if _, err := p.DB.ExecContext(ctx, query, key); err != nil {
			p.log.Warn("failed to delete key", slog.String("op", op), slog.String("key", key), sl.Err(err))
		}
	}
}
