package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// AnswerRepository defines the persistence contract for answers. Listings
// join the author record because quality display and re-evaluation need
// the author's trust score and badges.
type AnswerRepository interface {
	Create(ctx context.Context, answer domain.Answer) error
	GetByID(ctx context.Context, id string) (domain.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error)
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	MarkHelpful(ctx context.Context, id string) error
	AdjustVoteScore(ctx context.Context, id string, delta int) error
}

const answerColumns = `
	a.id, a.question_id, a.author_id, a.content, a.response_time_hours,
	a.quality_score, a.vote_score, a.is_helpful, a.is_accepted, a.accepted_at, a.created_at
`

const answerAuthorColumns = `
	u.id, u.display_name, u.avatar_url, u.trust_score,
	u.badge_expert, u.badge_verified, u.badge_helpful
`

// PgAnswerRepository implements AnswerRepository using pgxpool.
type PgAnswerRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnswerRepository(pool *pgxpool.Pool) *PgAnswerRepository {
	return &PgAnswerRepository{pool: pool}
}

func (r *PgAnswerRepository) Create(ctx context.Context, a domain.Answer) error {
	const query = `
		INSERT INTO answers (
			id, question_id, author_id, content, response_time_hours,
			quality_score, vote_score, is_helpful, is_accepted, accepted_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.QuestionID,
		a.AuthorID,
		a.Content,
		a.ResponseTimeHours,
		a.QualityScore,
		a.VoteScore,
		a.IsHelpful,
		a.IsAccepted,
		a.AcceptedAt,
		a.CreatedAt,
	)
	return err
}

func (r *PgAnswerRepository) GetByID(ctx context.Context, id string) (domain.Answer, error) {
	const query = `
		SELECT ` + answerColumns + `, ` + answerAuthorColumns + `
		FROM answers a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1
	`
	return r.scanAnswer(r.pool.QueryRow(ctx, query, id))
}

// ListByQuestion returns the accepted answer first, then by quality score.
func (r *PgAnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error) {
	const query = `
		SELECT ` + answerColumns + `, ` + answerAuthorColumns + `
		FROM answers a
		JOIN users u ON u.id = a.author_id
		WHERE a.question_id = $1
		ORDER BY a.is_accepted DESC, a.quality_score DESC, a.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make([]domain.Answer, 0, 8)
	for rows.Next() {
		a, err := r.scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *PgAnswerRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE answers SET is_accepted = TRUE, accepted_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgAnswerRepository) MarkHelpful(ctx context.Context, id string) error {
	const query = `UPDATE answers SET is_helpful = TRUE WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgAnswerRepository) AdjustVoteScore(ctx context.Context, id string, delta int) error {
	const query = `UPDATE answers SET vote_score = vote_score + $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, delta)
	return err
}

func (r *PgAnswerRepository) scanAnswer(row rowScanner) (domain.Answer, error) {
	var a domain.Answer
	var author domain.User
	err := row.Scan(
		&a.ID,
		&a.QuestionID,
		&a.AuthorID,
		&a.Content,
		&a.ResponseTimeHours,
		&a.QualityScore,
		&a.VoteScore,
		&a.IsHelpful,
		&a.IsAccepted,
		&a.AcceptedAt,
		&a.CreatedAt,
		&author.ID,
		&author.DisplayName,
		&author.AvatarURL,
		&author.TrustScore,
		&author.Badges.Expert,
		&author.Badges.Verified,
		&author.Badges.Helpful,
	)
	if err != nil {
		return domain.Answer{}, err
	}
	a.Author = &author
	return a, nil
}
