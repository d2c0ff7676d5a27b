package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
//
// The UNIQUE(user_id, name) index on agents is load-bearing: it is what
// makes template seeding idempotent under concurrent calls, not the
// existence check that precedes the insert.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create users and agents",
		SQL: `
			CREATE TABLE users (
				id                       INTEGER PRIMARY KEY AUTOINCREMENT,
				username                 TEXT NOT NULL,
				password_hash            TEXT NOT NULL,
				git_name                 TEXT NOT NULL DEFAULT '',
				git_email                TEXT NOT NULL DEFAULT '',
				has_completed_onboarding INTEGER NOT NULL DEFAULT 0,
				is_active                INTEGER NOT NULL DEFAULT 1,
				last_login               TEXT,
				created_at               TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE UNIQUE INDEX idx_users_username ON users (username);

			CREATE TABLE agents (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				name          TEXT NOT NULL,
				display_name  TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				system_prompt TEXT NOT NULL,
				category      TEXT NOT NULL DEFAULT 'general',
				is_template   INTEGER NOT NULL DEFAULT 0,
				is_active     INTEGER NOT NULL DEFAULT 1,
				created_at    TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE UNIQUE INDEX idx_agents_owner_name ON agents (user_id, name);
			CREATE INDEX idx_agents_owner ON agents (user_id);
			CREATE INDEX idx_agents_category ON agents (category);
		`,
	},
	{
		Version: 2,
		Name:    "create api keys and credentials",
		SQL: `
			CREATE TABLE api_keys (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				key_name   TEXT NOT NULL,
				key_hash   TEXT NOT NULL,
				key_prefix TEXT NOT NULL,
				is_active  INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				last_used  TEXT
			);

			CREATE UNIQUE INDEX idx_api_keys_hash ON api_keys (key_hash);
			CREATE INDEX idx_api_keys_owner ON api_keys (user_id);

			CREATE TABLE user_credentials (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id          INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				credential_name  TEXT NOT NULL,
				credential_type  TEXT NOT NULL,
				credential_value TEXT NOT NULL,
				description      TEXT NOT NULL DEFAULT '',
				is_active        INTEGER NOT NULL DEFAULT 1,
				created_at       TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_credentials_owner_type ON user_credentials (user_id, credential_type);
		`,
	},
}
