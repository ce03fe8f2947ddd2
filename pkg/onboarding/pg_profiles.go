package onboarding

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PGProfiles. *pgxpool.Pool, *pgx.Conn
// and pgx.Tx implement it.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGProfiles reads and writes provider profiles in PostgreSQL.
type PGProfiles struct {
	db DBTX
}

// NewPGProfiles creates a profile store on db.
func NewPGProfiles(db DBTX) *PGProfiles {
	return &PGProfiles{db: db}
}

const getProfileQuery = `SELECT profession, company_name FROM provider_profiles WHERE user_id = $1`

// GetProfile implements ProfileLookup.
func (p *PGProfiles) GetProfile(ctx context.Context, userID string) (*ProfileFields, error) {
	var fields ProfileFields
	err := p.db.QueryRow(ctx, getProfileQuery, userID).Scan(&fields.Profession, &fields.CompanyName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fields, nil
}

const saveProfileQuery = `INSERT INTO provider_profiles (user_id, profession, company_name)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET profession = EXCLUDED.profession, company_name = EXCLUDED.company_name, updated_at = now()`

// SaveProfile upserts the onboarding fields of userID. Both fields are
// required.
func (p *PGProfiles) SaveProfile(ctx context.Context, userID, profession, companyName string) error {
	profession = strings.TrimSpace(profession)
	companyName = strings.TrimSpace(companyName)
	if profession == "" || companyName == "" {
		return ErrIncompleteProfile
	}

	if _, err := p.db.Exec(ctx, saveProfileQuery, userID, profession, companyName); err != nil {
		return errors.Join(ErrProfileSaveFailed, err)
	}
	return nil
}
