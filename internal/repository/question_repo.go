package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// QuestionFilter narrows question listings. Search matches title and
// content case-insensitively and tags exactly.
type QuestionFilter struct {
	Category string
	Tag      string
	Search   string
	Limit    int
	Offset   int
}

// QuestionRepository defines the persistence contract for questions.
type QuestionRepository interface {
	Create(ctx context.Context, question domain.Question) error
	GetByID(ctx context.Context, id string) (domain.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]domain.Question, error)
	IncrementViewCount(ctx context.Context, id string) error
	IncrementAnswerCount(ctx context.Context, id string) error
	AdjustVoteScore(ctx context.Context, id string, delta int) error
	MarkResolved(ctx context.Context, id string) error
}

const questionColumns = `
	id, author_id, title, content, category, tags, urgency,
	view_count, answer_count, vote_score, resolved_at, created_at, updated_at
`

// PgQuestionRepository implements QuestionRepository using pgxpool.
type PgQuestionRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuestionRepository(pool *pgxpool.Pool) *PgQuestionRepository {
	return &PgQuestionRepository{pool: pool}
}

func (r *PgQuestionRepository) Create(ctx context.Context, q domain.Question) error {
	const query = `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		q.ID,
		q.AuthorID,
		q.Title,
		q.Content,
		q.Category,
		q.Tags,
		q.Urgency,
		q.ViewCount,
		q.AnswerCount,
		q.VoteScore,
		q.ResolvedAt,
		q.CreatedAt,
		q.UpdatedAt,
	)
	return err
}

func (r *PgQuestionRepository) GetByID(ctx context.Context, id string) (domain.Question, error) {
	const query = `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	return r.scanQuestion(r.pool.QueryRow(ctx, query, id))
}

func (r *PgQuestionRepository) List(ctx context.Context, filter QuestionFilter) ([]domain.Question, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR $2 = ANY(tags))
		  AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR content ILIKE '%' || $3 || '%' OR lower($3) = ANY(tags))
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, filter.Category, filter.Tag, filter.Search, limit, max(filter.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]domain.Question, 0, limit)
	for rows.Next() {
		q, err := r.scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *PgQuestionRepository) IncrementViewCount(ctx context.Context, id string) error {
	const query = `UPDATE questions SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgQuestionRepository) IncrementAnswerCount(ctx context.Context, id string) error {
	const query = `UPDATE questions SET answer_count = answer_count + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgQuestionRepository) AdjustVoteScore(ctx context.Context, id string, delta int) error {
	const query = `UPDATE questions SET vote_score = vote_score + $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, delta)
	return err
}

func (r *PgQuestionRepository) MarkResolved(ctx context.Context, id string) error {
	const query = `UPDATE questions SET resolved_at = NOW() WHERE id = $1 AND resolved_at IS NULL`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgQuestionRepository) scanQuestion(row rowScanner) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(
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
		return domain.Question{}, err
	}
	return q, nil
}
