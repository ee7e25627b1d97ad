package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"viet-kconnect/internal/domain"
)

// UserRepository defines the persistence contract for users, including the
// aggregate counters the scoring engines read.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)
	LinkOAuth(ctx context.Context, id, provider, subject string) error
	UpdateOTP(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	VerifyEmail(ctx context.Context, id string, at time.Time) error
	UpdateProfile(ctx context.Context, id, bio string, specialties []string, residenceYears int) error
	AdjustTrustScore(ctx context.Context, id string, delta int) error
	IncrementQuestionCount(ctx context.Context, id string) error
	IncrementAnswerCount(ctx context.Context, id string) error
	IncrementHelpfulAnswerCount(ctx context.Context, id string) error
	TouchLastActive(ctx context.Context, id string, at time.Time) error
}

const userColumns = `
	id, email, display_name, bio, avatar_url, auth_provider, auth_subject,
	password_hash, trust_score, residence_years, specialties,
	badge_expert, badge_verified, badge_helpful,
	question_count, answer_count, helpful_answer_count,
	response_rate, avg_response_time_hours, last_active,
	email_verified_at, otp_code_hash, otp_expires_at, created_at
`

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.Bio,
		user.AvatarURL,
		user.AuthProvider,
		user.AuthSubject,
		user.PasswordHash,
		user.TrustScore,
		user.ResidenceYears,
		user.Specialties,
		user.Badges.Expert,
		user.Badges.Verified,
		user.Badges.Helpful,
		user.QuestionCount,
		user.AnswerCount,
		user.HelpfulAnswerCount,
		user.ResponseRate,
		user.AvgResponseTimeHours,
		user.LastActive,
		user.EmailVerifiedAt,
		user.OtpCodeHash,
		user.OtpExpiresAt,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND auth_subject = $2`
	return r.scanUser(r.pool.QueryRow(ctx, query, provider, subject))
}

func (r *PgUserRepository) LinkOAuth(ctx context.Context, id, provider, subject string) error {
	const query = `UPDATE users SET auth_provider = $2, auth_subject = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, provider, subject)
	return err
}

func (r *PgUserRepository) UpdateOTP(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	const query = `UPDATE users SET otp_code_hash = $2, otp_expires_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, codeHash, expiresAt)
	return err
}

func (r *PgUserRepository) VerifyEmail(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users
		SET email_verified_at = $2, badge_verified = TRUE,
		    otp_code_hash = '', otp_expires_at = NULL
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id, bio string, specialties []string, residenceYears int) error {
	const query = `
		UPDATE users
		SET bio = $2, specialties = $3, residence_years = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, bio, specialties, residenceYears)
	return err
}

// AdjustTrustScore applies a delta, clamped into the 0-1000 scale.
func (r *PgUserRepository) AdjustTrustScore(ctx context.Context, id string, delta int) error {
	const query = `
		UPDATE users
		SET trust_score = LEAST(GREATEST(trust_score + $2, 0), 1000)
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, delta)
	return err
}

func (r *PgUserRepository) IncrementQuestionCount(ctx context.Context, id string) error {
	const query = `UPDATE users SET question_count = question_count + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) IncrementAnswerCount(ctx context.Context, id string) error {
	const query = `UPDATE users SET answer_count = answer_count + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) IncrementHelpfulAnswerCount(ctx context.Context, id string) error {
	const query = `UPDATE users SET helpful_answer_count = helpful_answer_count + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_active = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.Bio,
		&u.AvatarURL,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.PasswordHash,
		&u.TrustScore,
		&u.ResidenceYears,
		&u.Specialties,
		&u.Badges.Expert,
		&u.Badges.Verified,
		&u.Badges.Helpful,
		&u.QuestionCount,
		&u.AnswerCount,
		&u.HelpfulAnswerCount,
		&u.ResponseRate,
		&u.AvgResponseTimeHours,
		&u.LastActive,
		&u.EmailVerifiedAt,
		&u.OtpCodeHash,
		&u.OtpExpiresAt,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
