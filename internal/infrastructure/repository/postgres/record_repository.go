package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, uuid, session_id, emirates_id, name, dob, issuing_date, expiry_date, nationality,
	gender, sex, address, occupation, employer, issuing_place, family_sponsor, family_sponsor_name,
	raw_response, status, created_at, updated_at`

func (r *RecordRepository) Create(ctx context.Context, rec *domain.IdentityRecord) error {
	raw, err := json.Marshal(rec.RawResponse)
	if err != nil {
		return fmt.Errorf("marshal raw response: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
INSERT INTO identity_records (
	uuid, session_id, emirates_id, name, dob, issuing_date, expiry_date, nationality,
	gender, sex, address, occupation, employer, issuing_place, family_sponsor, family_sponsor_name,
	raw_response, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
RETURNING id
`,
		rec.UUID, rec.SessionID, rec.EmiratesID, rec.Name, rec.DOB, rec.IssuingDate, rec.ExpiryDate, rec.Nationality,
		rec.Gender, rec.Sex, rec.Address, rec.Occupation, rec.Employer, rec.IssuingPlace, rec.FamilySponsor, rec.FamilySponsorName,
		raw, string(rec.Status), rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert identity record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*domain.IdentityRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+`
FROM identity_records
WHERE id = $1
`, id)
	return scanRecord(row, id)
}

func (r *RecordRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.IdentityRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+`
FROM identity_records
WHERE session_id = $1
`, sessionID)
	return scanRecord(row, sessionID)
}

func (r *RecordRepository) Update(ctx context.Context, rec *domain.IdentityRecord) error {
	raw, err := json.Marshal(rec.RawResponse)
	if err != nil {
		return fmt.Errorf("marshal raw response: %w", err)
	}
	rec.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE identity_records
SET emirates_id = $2, name = $3, dob = $4, issuing_date = $5, expiry_date = $6, nationality = $7,
	gender = $8, sex = $9, address = $10, occupation = $11, employer = $12, issuing_place = $13,
	family_sponsor = $14, family_sponsor_name = $15, raw_response = $16, status = $17, updated_at = $18
WHERE id = $1
`,
		rec.ID, rec.EmiratesID, rec.Name, rec.DOB, rec.IssuingDate, rec.ExpiryDate, rec.Nationality,
		rec.Gender, rec.Sex, rec.Address, rec.Occupation, rec.Employer, rec.IssuingPlace,
		rec.FamilySponsor, rec.FamilySponsorName, raw, string(rec.Status), rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update identity record: %w", err)
	}
	return notFoundIfNoRows(res, domain.ErrRecordNotFound, "update identity record", rec.ID)
}

func (r *RecordRepository) UpdateStatus(ctx context.Context, id int64, status domain.RecordStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE identity_records
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update identity record status: %w", err)
	}
	return notFoundIfNoRows(res, domain.ErrRecordNotFound, "update identity record status", id)
}

func scanRecord(row *sql.Row, key any) (*domain.IdentityRecord, error) {
	var rec domain.IdentityRecord
	var raw []byte
	var status string

	err := row.Scan(
		&rec.ID, &rec.UUID, &rec.SessionID, &rec.EmiratesID, &rec.Name, &rec.DOB, &rec.IssuingDate, &rec.ExpiryDate, &rec.Nationality,
		&rec.Gender, &rec.Sex, &rec.Address, &rec.Occupation, &rec.Employer, &rec.IssuingPlace, &rec.FamilySponsor, &rec.FamilySponsorName,
		&raw, &status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmtNotFound(domain.ErrRecordNotFound, "get identity record", key)
		}
		return nil, fmt.Errorf("scan identity record: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec.RawResponse); err != nil {
			return nil, fmt.Errorf("unmarshal raw response: %w", err)
		}
	}
	rec.Status = domain.RecordStatus(status)
	return &rec, nil
}
