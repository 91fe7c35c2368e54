package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInit, downInit)
}

func upInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE source_posts (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		source_id BIGINT NOT NULL DEFAULT 0,
		source_link TEXT NOT NULL DEFAULT '',
		post_link TEXT NOT NULL,
		text TEXT NOT NULL,
		topics TEXT[] NOT NULL DEFAULT '{}',
		likes INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		comments INTEGER NOT NULL DEFAULT 0,
		media_url TEXT NOT NULL DEFAULT '',
		is_video BOOLEAN NOT NULL DEFAULT FALSE,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (post_link, text)
	);
	CREATE INDEX source_posts_owner_unused_idx ON source_posts (owner_id) WHERE NOT used;

	CREATE TABLE channel_configs (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		channel_link TEXT NOT NULL,
		mode TEXT NOT NULL CHECK (mode IN ('automatic', 'controlled')),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		source_selection TEXT NOT NULL DEFAULT 'auto' CHECK (source_selection IN ('auto', 'manual')),
		selected_sources TEXT,
		topics TEXT[] NOT NULL DEFAULT '{}',
		persona_role TEXT NOT NULL DEFAULT '',
		blocked_topics TEXT[] NOT NULL DEFAULT '{}',
		candidate_limit INTEGER NOT NULL DEFAULT 8,
		next_post_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner_id, channel_link)
	);

	CREATE TABLE queue_items (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		channel_link TEXT NOT NULL,
		text TEXT NOT NULL,
		media_url TEXT NOT NULL DEFAULT '',
		is_video BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN
			('pending', 'sent_for_approval', 'approved', 'publishing',
			 'published', 'cancelled', 'failed', 'expired')),
		scheduled_time TIMESTAMPTZ NOT NULL,
		mode TEXT NOT NULL CHECK (mode IN ('automatic', 'controlled')),
		source_post_id BIGINT NOT NULL DEFAULT 0,
		source_link TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX queue_items_status_idx ON queue_items (status, scheduled_time);
	CREATE INDEX queue_items_owner_channel_idx ON queue_items (owner_id, channel_link);

	CREATE TABLE published_records (
		id BIGSERIAL PRIMARY KEY,
		channel_link TEXT NOT NULL,
		source_link TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX published_records_channel_idx ON published_records (channel_link, published_at);

	CREATE TABLE personas (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL UNIQUE,
		role_text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`)
	return err
}

func downInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE personas;
	DROP TABLE published_records;
	DROP TABLE queue_items;
	DROP TABLE channel_configs;
	DROP TABLE source_posts;
	`)
	return err
}
