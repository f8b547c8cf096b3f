package database

// schemaStatements are applied in order by Migrate. Each one is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS chat_history (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		response TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_history_session_created
		ON chat_history (session_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS health_reports (
		id UUID PRIMARY KEY,
		subject TEXT NOT NULL DEFAULT '',
		pet_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ratelimit_config (
		config_key TEXT PRIMARY KEY,
		rate TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
