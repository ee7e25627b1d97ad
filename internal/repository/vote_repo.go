package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// VoteRepository stores one vote per user per target.
type VoteRepository interface {
	Get(ctx context.Context, userID, targetType, targetID string) (domain.Vote, error)
	Create(ctx context.Context, vote domain.Vote) error
	UpdateType(ctx context.Context, id, voteType string) error
	Delete(ctx context.Context, id string) error
}

// PgVoteRepository implements VoteRepository using pgxpool.
type PgVoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgVoteRepository(pool *pgxpool.Pool) *PgVoteRepository {
	return &PgVoteRepository{pool: pool}
}

func (r *PgVoteRepository) Get(ctx context.Context, userID, targetType, targetID string) (domain.Vote, error) {
	const query = `
		SELECT id, user_id, target_type, target_id, vote_type, created_at, updated_at
		FROM votes
		WHERE user_id = $1 AND target_type = $2 AND target_id = $3
	`
	var v domain.Vote
	err := r.pool.QueryRow(ctx, query, userID, targetType, targetID).Scan(
		&v.ID,
		&v.UserID,
		&v.TargetType,
		&v.TargetID,
		&v.VoteType,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return domain.Vote{}, err
	}
	return v, nil
}

func (r *PgVoteRepository) Create(ctx context.Context, vote domain.Vote) error {
	const query = `
		INSERT INTO votes (id, user_id, target_type, target_id, vote_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		vote.ID,
		vote.UserID,
		vote.TargetType,
		vote.TargetID,
		vote.VoteType,
		vote.CreatedAt,
		vote.UpdatedAt,
	)
	return err
}

func (r *PgVoteRepository) UpdateType(ctx context.Context, id, voteType string) error {
	const query = `UPDATE votes SET vote_type = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, voteType)
	return err
}

func (r *PgVoteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM votes WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
