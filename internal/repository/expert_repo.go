package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// ExpertRepository resolves the candidate pool the matching engine scores.
// Candidates are plain users who declared at least one specialty.
type ExpertRepository interface {
	ListCandidates(ctx context.Context, limit int) ([]domain.User, error)
}

// PgExpertRepository implements ExpertRepository using pgxpool.
type PgExpertRepository struct {
	pool *pgxpool.Pool
}

func NewPgExpertRepository(pool *pgxpool.Pool) *PgExpertRepository {
	return &PgExpertRepository{pool: pool}
}

// ListCandidates returns recently active users with declared specialties,
// most trusted first. The engine re-ranks them, so the SQL ordering only
// bounds which candidates are considered when the pool is large.
func (r *PgExpertRepository) ListCandidates(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE cardinality(specialties) > 0
		ORDER BY trust_score DESC, last_active DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	scanner := &PgUserRepository{pool: r.pool}
	for rows.Next() {
		u, err := scanner.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
