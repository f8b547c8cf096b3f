package models

import "time"

// RatelimitConfig is the stored /api rate limit. Rate uses the limiter's
// "<count>-<S|M|H|D>" format, e.g. "20-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
