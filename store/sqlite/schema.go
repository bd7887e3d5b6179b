package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	father_initial TEXT NOT NULL,
	password_hash  TEXT NOT NULL,
	avatar_path    TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS universities (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS roles (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scopes (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS role_scopes (
	role_id  TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	scope_id TEXT NOT NULL REFERENCES scopes(id) ON DELETE CASCADE,
	PRIMARY KEY (role_id, scope_id)
);

CREATE TABLE IF NOT EXISTS university_users (
	university_id TEXT NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role_id       TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	PRIMARY KEY (university_id, user_id, role_id)
);

CREATE INDEX IF NOT EXISTS university_users_user_idx ON university_users (user_id);
`
