package domain

import "time"

// Badges are the community badges a user can hold. Absent keys in the
// stored JSON decode to false.
type Badges struct {
	Expert   bool `json:"expert,omitempty"`
	Verified bool `json:"verified,omitempty"`
	Helpful  bool `json:"helpful,omitempty"`
}

// User is a community member. Experts are plain users with declared
// specialties; the matching engine scores them as-is.
type User struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	DisplayName          string     `json:"display_name,omitempty"`
	Bio                  string     `json:"bio,omitempty"`
	AvatarURL            string     `json:"avatar_url,omitempty"`
	AuthProvider         string     `json:"auth_provider,omitempty"`
	AuthSubject          string     `json:"-"`
	PasswordHash         string     `json:"-"`
	TrustScore           int        `json:"trust_score"`
	ResidenceYears       int        `json:"residence_years"`
	Specialties          []string   `json:"specialties,omitempty"`
	Badges               Badges     `json:"badges"`
	QuestionCount        int        `json:"question_count"`
	AnswerCount          int        `json:"answer_count"`
	HelpfulAnswerCount   int        `json:"helpful_answer_count"`
	ResponseRate         float64    `json:"response_rate,omitempty"`
	AvgResponseTimeHours float64    `json:"avg_response_time,omitempty"`
	LastActive           time.Time  `json:"last_active"`
	EmailVerifiedAt      *time.Time `json:"email_verified_at,omitempty"`
	OtpCodeHash          string     `json:"-"`
	OtpExpiresAt         *time.Time `json:"otp_expires_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// IsVerified reports whether the user completed email verification.
func (u User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
