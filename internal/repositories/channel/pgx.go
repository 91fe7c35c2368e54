package channel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/repositories"
	"github.com/curatorbot/autopost-engine/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("ChannelRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

const columns = "id, owner_id, channel_link, mode, active, source_selection, selected_sources, topics, persona_role, blocked_topics, candidate_limit, next_post_time, created_at, updated_at"

// selected_sources is JSON-encoded at the storage boundary only;
// everything above the repository works with typed ids.
func encodeSources(ids []int64) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return json.Marshal(ids)
}

func scanConfig(row pgx.Row) (*domain.ChannelAutopostConfig, error) {
	var (
		c       domain.ChannelAutopostConfig
		sources []byte
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.ChannelLink, &c.Mode, &c.Active, &c.SourceSelection,
		&sources, &c.Topics, &c.PersonaRole, &c.BlockedTopics, &c.CandidateLimit,
		&c.NextPostTime, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &c.SelectedSourceIDs); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (p *Pgx) Upsert(ctx context.Context, cfg domain.ChannelAutopostConfig) error {
	sources, err := encodeSources(cfg.SelectedSourceIDs)
	if err != nil {
		return err
	}

	query, args, err := repositories.SqBuilder.
		Insert("channel_configs").
		Columns("owner_id", "channel_link", "mode", "active", "source_selection", "selected_sources",
			"topics", "persona_role", "blocked_topics", "candidate_limit", "next_post_time", "updated_at").
		Values(cfg.OwnerID, cfg.ChannelLink, cfg.Mode, cfg.Active, cfg.SourceSelection, sources,
			cfg.Topics, cfg.PersonaRole, cfg.BlockedTopics, cfg.CandidateLimit, cfg.NextPostTime, time.Now()).
		Suffix(`ON CONFLICT (owner_id, channel_link) DO UPDATE SET
			mode = EXCLUDED.mode,
			active = EXCLUDED.active,
			source_selection = EXCLUDED.source_selection,
			selected_sources = EXCLUDED.selected_sources,
			topics = EXCLUDED.topics,
			persona_role = EXCLUDED.persona_role,
			blocked_topics = EXCLUDED.blocked_topics,
			candidate_limit = EXCLUDED.candidate_limit,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) Get(ctx context.Context, ownerID int64, channelLink string) (*domain.ChannelAutopostConfig, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns).
		From("channel_configs").
		Where(sq.Eq{"owner_id": ownerID, "channel_link": channelLink}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	cfg, err := scanConfig(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cfg, nil
}

func (p *Pgx) list(ctx context.Context, where sq.Sqlizer) ([]*domain.ChannelAutopostConfig, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns).
		From("channel_configs").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.ChannelAutopostConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (p *Pgx) ListActive(ctx context.Context) ([]*domain.ChannelAutopostConfig, error) {
	return p.list(ctx, sq.Eq{"active": true})
}

func (p *Pgx) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.ChannelAutopostConfig, error) {
	return p.list(ctx, sq.Eq{"owner_id": ownerID})
}

func (p *Pgx) update(ctx context.Context, ownerID int64, channelLink string, set map[string]interface{}) error {
	builder := repositories.SqBuilder.
		Update("channel_configs").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"owner_id": ownerID, "channel_link": channelLink})
	for col, val := range set {
		builder = builder.Set(col, val)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Pgx) SetActive(ctx context.Context, ownerID int64, channelLink string, active bool) error {
	return p.update(ctx, ownerID, channelLink, map[string]interface{}{"active": active})
}

func (p *Pgx) SetMode(ctx context.Context, ownerID int64, channelLink string, mode domain.Mode) error {
	return p.update(ctx, ownerID, channelLink, map[string]interface{}{"mode": mode})
}

func (p *Pgx) SetNextPostTime(ctx context.Context, ownerID int64, channelLink string, t time.Time) error {
	return p.update(ctx, ownerID, channelLink, map[string]interface{}{"next_post_time": t})
}

func (p *Pgx) ResetNextPostTime(ctx context.Context, ownerID int64, now time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Update("channel_configs").
		Set("next_post_time", now).
		Set("updated_at", now).
		Where(sq.Eq{"owner_id": ownerID, "active": true}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Pgx) Delete(ctx context.Context, ownerID int64, channelLink string) error {
	query, args, err := repositories.SqBuilder.
		Delete("channel_configs").
		Where(sq.Eq{"owner_id": ownerID, "channel_link": channelLink}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
