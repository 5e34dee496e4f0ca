package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema es idempotente; se aplica en cada arranque cuando AUTO_MIGRATE=true.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id uuid PRIMARY KEY,
    email text NOT NULL,
    full_name text NOT NULL DEFAULT '',
    avatar_image text NOT NULL DEFAULT '',
    role text NOT NULL DEFAULT 'User' CHECK (role IN ('User', 'Admin')),
    is_verified boolean NOT NULL DEFAULT false,
    active boolean NOT NULL DEFAULT true,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_lower_unique
ON accounts (LOWER(email));

CREATE TABLE IF NOT EXISTS account_provider_links (
    account_id uuid NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    provider text NOT NULL,
    provider_id text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    PRIMARY KEY (account_id, provider)
);

CREATE INDEX IF NOT EXISTS account_provider_links_lookup_idx
ON account_provider_links (provider, provider_id);

CREATE TABLE IF NOT EXISTS blogs (
    id uuid PRIMARY KEY,
    slug text NOT NULL UNIQUE,
    author_name text NOT NULL DEFAULT '',
    banner text NOT NULL DEFAULT '',
    title text NOT NULL DEFAULT '',
    sub_title text NOT NULL DEFAULT '',
    content text NOT NULL DEFAULT '',
    read_time text NOT NULL DEFAULT '',
    active boolean NOT NULL DEFAULT true,
    published boolean NOT NULL DEFAULT false,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

// Migrate crea las tablas necesarias si no existen.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
