package persona

import (
	"context"
	"errors"

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
		logger: logger.WithComponent("PersonaRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Get(ctx context.Context, ownerID int64) (string, error) {
	query, args, err := repositories.SqBuilder.
		Select("role_text").
		From("personas").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return "", repositories.ErrBadQuery
	}

	var role string
	err = p.pg.QueryRow(ctx, query, args...).Scan(&role)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	// First time we see this owner: seed the default role.
	insert, args, err := repositories.SqBuilder.
		Insert("personas").
		Columns("owner_id", "role_text").
		Values(ownerID, domain.DefaultPersonaRole).
		Suffix("ON CONFLICT (owner_id) DO NOTHING").
		ToSql()
	if err != nil {
		return "", repositories.ErrBadQuery
	}
	if _, err := p.pg.Exec(ctx, insert, args...); err != nil {
		return "", err
	}
	return domain.DefaultPersonaRole, nil
}

func (p *Pgx) Set(ctx context.Context, ownerID int64, roleText string) error {
	query, args, err := repositories.SqBuilder.
		Insert("personas").
		Columns("owner_id", "role_text").
		Values(ownerID, roleText).
		Suffix("ON CONFLICT (owner_id) DO UPDATE SET role_text = EXCLUDED.role_text").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) Delete(ctx context.Context, ownerID int64) error {
	query, args, err := repositories.SqBuilder.
		Delete("personas").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
