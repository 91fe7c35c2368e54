package published

import (
	"context"

	"time"

	"github.com/curatorbot/autopost-engine/internal/domain"
	"github.com/curatorbot/autopost-engine/internal/repositories"
	"github.com/curatorbot/autopost-engine/pkg/logger"
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
		logger: logger.WithComponent("PublishedRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Add(ctx context.Context, rec domain.PublishedRecord) error {
	query, args, err := repositories.SqBuilder.
		Insert("published_records").
		Columns("channel_link", "source_link", "text", "published_at").
		Values(rec.ChannelLink, rec.SourceLink, rec.Text, rec.PublishedAt).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) ListSince(ctx context.Context, channelLink string, since time.Time) ([]*domain.PublishedRecord, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "channel_link", "source_link", "text", "published_at").
		From("published_records").
		Where(sq.Eq{"channel_link": channelLink}).
		Where(sq.GtOrEq{"published_at": since}).
		OrderBy("published_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.PublishedRecord
	for rows.Next() {
		var rec domain.PublishedRecord
		if err := rows.Scan(&rec.ID, &rec.ChannelLink, &rec.SourceLink, &rec.Text, &rec.PublishedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
