package sourcepost

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
		logger: logger.WithComponent("SourcePostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

const columns = "id, owner_id, source_id, source_link, post_link, text, topics, likes, views, comments, media_url, is_video, used, published_at, created_at"

func scanPost(row pgx.Row) (*domain.SourcePost, error) {
	var p domain.SourcePost
	err := row.Scan(&p.ID, &p.OwnerID, &p.SourceID, &p.SourceLink, &p.PostLink, &p.Text,
		&p.Topics, &p.Likes, &p.Views, &p.Comments, &p.MediaURL, &p.IsVideo, &p.Used,
		&p.PublishedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save upserts harvested posts, refreshing metrics without touching the
// used flag of rows that already exist.
func (p *Pgx) Save(ctx context.Context, posts []domain.SourcePost) error {
	for _, post := range posts {
		query, args, err := repositories.SqBuilder.
			Insert("source_posts").
			Columns("owner_id", "source_id", "source_link", "post_link", "text", "topics",
				"likes", "views", "comments", "media_url", "is_video", "published_at", "created_at").
			Values(post.OwnerID, post.SourceID, post.SourceLink, post.PostLink, post.Text, post.Topics,
				post.Likes, post.Views, post.Comments, post.MediaURL, post.IsVideo, post.PublishedAt, time.Now()).
			Suffix(`ON CONFLICT (post_link, text) DO UPDATE SET
				likes = EXCLUDED.likes,
				views = EXCLUDED.views,
				comments = EXCLUDED.comments,
				media_url = EXCLUDED.media_url,
				published_at = EXCLUDED.published_at`).
			ToSql()
		if err != nil {
			return repositories.ErrBadQuery
		}
		if _, err := p.pg.Exec(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pgx) ListUnusedByOwner(ctx context.Context, ownerID int64, limit int) ([]*domain.SourcePost, error) {
	builder := repositories.SqBuilder.
		Select(columns).
		From("source_posts").
		Where(sq.Eq{"owner_id": ownerID, "used": false}).
		OrderBy("(likes + comments) DESC", "published_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.SourcePost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (p *Pgx) GetByID(ctx context.Context, id int64) (*domain.SourcePost, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns).
		From("source_posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	post, err := scanPost(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (p *Pgx) MarkUsed(ctx context.Context, id int64) error {
	query, args, err := repositories.SqBuilder.
		Update("source_posts").
		Set("used", true).
		Where(sq.Eq{"id": id}).
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

// CleanupOldRecords deletes unused posts older than the given duration.
func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query, args, err := repositories.SqBuilder.
		Delete("source_posts").
		Where(sq.Lt{"created_at": cutoff}).
		Where(sq.Eq{"used": false}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
