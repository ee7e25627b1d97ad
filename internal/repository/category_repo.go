package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// CategoryRepository lists the fixed question categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (domain.Category, error)
}

// PgCategoryRepository implements CategoryRepository using pgxpool.
type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
		SELECT c.id, c.slug, c.name, c.description,
		       (SELECT COUNT(*) FROM questions q WHERE q.category = c.name) AS question_count
		FROM categories c
		ORDER BY c.name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.QuestionCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PgCategoryRepository) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	const query = `SELECT id, slug, name, description, 0 FROM categories WHERE slug = $1`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.QuestionCount)
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}
