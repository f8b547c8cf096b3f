package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pawcare/pawcare-api/internal/models"
)

// RatelimitConfigKey is the row holding the limit applied to /api routes
const RatelimitConfigKey = "api"

// RatelimitConfigRepository handles rate limit configuration in the database.
type RatelimitConfigRepository struct {
	db  *DB
	key string
}

// NewRatelimitConfigRepository creates a repository for the /api rate limit row.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db, key: RatelimitConfigKey}
}

// Get retrieves the rate limit config, or nil when none has been stored yet.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	c := &models.RatelimitConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, r.key).Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config %s: %w", r.key, err)
	}
	return c, nil
}

// Set upserts the rate limit config. Rate format: "<limit>-<S|M|H|D>", e.g. "20-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
		RETURNING config_key, created_at, updated_at
	`, r.key, rate, now).Scan(&c.ConfigKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set ratelimit config %s: %w", r.key, err)
	}
	c.Rate = rate
	return nil
}
