package queueitem

import (
	"context"
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
		logger: logger.WithComponent("QueueItemRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

const columns = "id, owner_id, channel_link, text, media_url, is_video, status, scheduled_time, mode, source_post_id, source_link, created_at"

func scanItem(row pgx.Row) (*domain.QueueItem, error) {
	var it domain.QueueItem
	err := row.Scan(&it.ID, &it.OwnerID, &it.ChannelLink, &it.Text, &it.MediaURL, &it.IsVideo,
		&it.Status, &it.ScheduledTime, &it.Mode, &it.SourcePostID, &it.SourceLink, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (p *Pgx) Create(ctx context.Context, item domain.QueueItem) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Insert("queue_items").
		Columns("owner_id", "channel_link", "text", "media_url", "is_video", "status",
			"scheduled_time", "mode", "source_post_id", "source_link", "created_at").
		Values(item.OwnerID, item.ChannelLink, item.Text, item.MediaURL, item.IsVideo, item.Status,
			item.ScheduledTime, item.Mode, item.SourcePostID, item.SourceLink, time.Now()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Pgx) GetByID(ctx context.Context, id int64) (*domain.QueueItem, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns).
		From("queue_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	item, err := scanItem(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// UpdateStatusIf is the engine's only concurrency-safety primitive: the
// guarded UPDATE succeeds for exactly one caller even when several
// workers race on the same item.
func (p *Pgx) UpdateStatusIf(ctx context.Context, id int64, from []domain.Status, to domain.Status) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Update("queue_items").
		Set("status", to).
		Where(sq.Eq{"id": id, "status": statusStrings(from)}).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Pgx) SetScheduledTime(ctx context.Context, id int64, t time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("queue_items").
		Set("scheduled_time", t).
		Where(sq.Eq{"id": id, "status": statusStrings(domain.NonTerminalStatuses())}).
		ToSql()
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

func (p *Pgx) SetText(ctx context.Context, id int64, text string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Update("queue_items").
		Set("text", text).
		Where(sq.Eq{"id": id, "status": []string{string(domain.StatusPending), string(domain.StatusSentForApproval)}}).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Pgx) HasNonTerminal(ctx context.Context, ownerID int64, channelLink string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("queue_items").
		Where(sq.Eq{
			"owner_id":     ownerID,
			"channel_link": channelLink,
			"status":       statusStrings(domain.NonTerminalStatuses()),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Pgx) queryItems(ctx context.Context, builder sq.SelectBuilder) ([]*domain.QueueItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.QueueItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *Pgx) ListNonTerminalByOwner(ctx context.Context, ownerID int64) ([]*domain.QueueItem, error) {
	return p.queryItems(ctx, repositories.SqBuilder.
		Select(columns).
		From("queue_items").
		Where(sq.Eq{"owner_id": ownerID, "status": statusStrings(domain.NonTerminalStatuses())}).
		OrderBy("created_at DESC"))
}

func (p *Pgx) LatestAwaitingApproval(ctx context.Context, ownerID int64, channelLink string) (*domain.QueueItem, error) {
	items, err := p.queryItems(ctx, repositories.SqBuilder.
		Select(columns).
		From("queue_items").
		Where(sq.Eq{
			"owner_id":     ownerID,
			"channel_link": channelLink,
			"status":       []string{string(domain.StatusPending), string(domain.StatusSentForApproval)},
		}).
		OrderBy("created_at DESC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

func (p *Pgx) ListDue(ctx context.Context, status domain.Status, before time.Time) ([]*domain.QueueItem, error) {
	return p.queryItems(ctx, repositories.SqBuilder.
		Select(columns).
		From("queue_items").
		Where(sq.Eq{"status": status}).
		Where(sq.LtOrEq{"scheduled_time": before}).
		OrderBy("scheduled_time ASC"))
}

func (p *Pgx) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Update("queue_items").
		Set("status", domain.StatusExpired).
		Where(sq.Eq{"status": []string{string(domain.StatusPending), string(domain.StatusSentForApproval)}}).
		Where(sq.Lt{"created_at": cutoff}).
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

func (p *Pgx) ListHistory(ctx context.Context, channelLink string, since time.Time) ([]*domain.QueueItem, error) {
	return p.queryItems(ctx, repositories.SqBuilder.
		Select(columns).
		From("queue_items").
		Where(sq.Eq{"channel_link": channelLink}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC"))
}
