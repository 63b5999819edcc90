package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.ChatSession) error {
	err := r.db.QueryRowContext(ctx, `
INSERT INTO chat_sessions (
	uuid, session_id, step, is_completed, looking_for_insurance, role, salary, depender_type,
	full_name, emirates_id_number, dob, expiry, nationality, occupation, emirates_id_uploaded, mobile,
	created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
RETURNING id
`,
		s.UUID, s.SessionID, string(s.Step), s.IsCompleted, s.LookingForInsurance, s.Role, s.Salary, s.DependerType,
		s.FullName, s.EmiratesIDNumber, s.DOB, s.Expiry, s.Nationality, s.Occupation, s.EmiratesIDUploaded, s.Mobile,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, uuid, session_id, step, is_completed, looking_for_insurance, role, salary, depender_type,
	full_name, emirates_id_number, dob, expiry, nationality, occupation, emirates_id_uploaded, mobile,
	created_at, updated_at
FROM chat_sessions
WHERE session_id = $1
`, sessionID)

	var s domain.ChatSession
	var step string
	err := row.Scan(
		&s.ID, &s.UUID, &s.SessionID, &step, &s.IsCompleted, &s.LookingForInsurance, &s.Role, &s.Salary, &s.DependerType,
		&s.FullName, &s.EmiratesIDNumber, &s.DOB, &s.Expiry, &s.Nationality, &s.Occupation, &s.EmiratesIDUploaded, &s.Mobile,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmtNotFound(domain.ErrSessionNotFound, "get session", sessionID)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Step = domain.Step(step)
	return &s, nil
}

func (r *SessionRepository) Update(ctx context.Context, s *domain.ChatSession) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET step = $2, is_completed = $3, looking_for_insurance = $4, role = $5, salary = $6, depender_type = $7,
	full_name = $8, emirates_id_number = $9, dob = $10, expiry = $11, nationality = $12, occupation = $13,
	emirates_id_uploaded = $14, mobile = $15, updated_at = $16
WHERE session_id = $1
`,
		s.SessionID, string(s.Step), s.IsCompleted, s.LookingForInsurance, s.Role, s.Salary, s.DependerType,
		s.FullName, s.EmiratesIDNumber, s.DOB, s.Expiry, s.Nationality, s.Occupation,
		s.EmiratesIDUploaded, s.Mobile, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return notFoundIfNoRows(res, domain.ErrSessionNotFound, "update session", s.SessionID)
}
