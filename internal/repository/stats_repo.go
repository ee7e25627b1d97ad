package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// StatsRepository aggregates community-wide counters for the stats
// endpoint.
type StatsRepository interface {
	Overview(ctx context.Context) (domain.StatsOverview, error)
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
	VoteBreakdown(ctx context.Context) (up, down int, err error)
	TopUsers(ctx context.Context, limit int) ([]domain.User, error)
	PopularQuestions(ctx context.Context, since time.Time, limit int) ([]domain.Question, error)
}

// PgStatsRepository implements StatsRepository using pgxpool.
type PgStatsRepository struct {
	pool *pgxpool.Pool
}

func NewPgStatsRepository(pool *pgxpool.Pool) *PgStatsRepository {
	return &PgStatsRepository{pool: pool}
}

func (r *PgStatsRepository) Overview(ctx context.Context) (domain.StatsOverview, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM answers),
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM questions WHERE resolved_at IS NOT NULL),
			(SELECT COUNT(*) FROM answers WHERE is_accepted),
			(SELECT COUNT(*) FROM answers WHERE is_helpful),
			(SELECT COALESCE(SUM(view_count), 0) FROM questions)
	`
	var o domain.StatsOverview
	err := r.pool.QueryRow(ctx, query).Scan(
		&o.TotalUsers,
		&o.TotalQuestions,
		&o.TotalAnswers,
		&o.TotalVotes,
		&o.ResolvedQuestions,
		&o.AcceptedAnswers,
		&o.HelpfulAnswers,
		&o.TotalViews,
	)
	return o, err
}

func (r *PgStatsRepository) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	const query = `
		SELECT category, COUNT(*)
		FROM questions
		GROUP BY category
		ORDER BY COUNT(*) DESC, category ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]domain.CategoryCount, 0, 8)
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *PgStatsRepository) VoteBreakdown(ctx context.Context) (int, int, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'up'),
			COUNT(*) FILTER (WHERE vote_type = 'down')
		FROM votes
	`
	var up, down int
	err := r.pool.QueryRow(ctx, query).Scan(&up, &down)
	return up, down, err
}

// TopUsers returns the highest-trust members with the public subset of
// their profile.
func (r *PgStatsRepository) TopUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	const query = `
		SELECT id, display_name, avatar_url, trust_score, helpful_answer_count,
		       badge_expert, badge_verified, badge_helpful
		FROM users
		ORDER BY trust_score DESC, helpful_answer_count DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		var u domain.User
		err := rows.Scan(
			&u.ID,
			&u.DisplayName,
			&u.AvatarURL,
			&u.TrustScore,
			&u.HelpfulAnswerCount,
			&u.Badges.Expert,
			&u.Badges.Verified,
			&u.Badges.Helpful,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgStatsRepository) PopularQuestions(ctx context.Context, since time.Time, limit int) ([]domain.Question, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	const query = `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE created_at >= $1
		ORDER BY vote_score DESC, view_count DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]domain.Question, 0, limit)
	for rows.Next() {
		var q domain.Question
		err := rows.Scan(
			&q.ID,
			&q.AuthorID,
			&q.Title,
			&q.Content,
			&q.Category,
			&q.Tags,
			&q.Urgency,
			&q.ViewCount,
			&q.AnswerCount,
			&q.VoteScore,
			&q.ResolvedAt,
			&q.CreatedAt,
			&q.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
