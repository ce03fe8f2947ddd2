package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/onboarding"
)

type fakeRow struct {
	values []*string
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(**string)) = r.values[i]
	}
	return nil
}

type fakeDB struct {
	row      fakeRow
	execErr  error
	lastSQL  string
	lastArgs []any
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.lastSQL, db.lastArgs = sql, args
	return db.row
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.lastSQL, db.lastArgs = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), db.execErr
}

func TestPGProfiles_GetProfile(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: fakeRow{values: []*string{ptr("Carpenter"), nil}}}
		p, err := onboarding.NewPGProfiles(db).GetProfile(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "Carpenter", *p.Profession)
		assert.Nil(t, p.CompanyName)
		assert.False(t, p.Complete())
		assert.Equal(t, []any{"u1"}, db.lastArgs)
	})

	t.Run("no row", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		_, err := onboarding.NewPGProfiles(db).GetProfile(context.Background(), "u1")
		assert.ErrorIs(t, err, onboarding.ErrProfileNotFound)
	})

	t.Run("backend error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("conn reset")
		db := &fakeDB{row: fakeRow{err: boom}}
		_, err := onboarding.NewPGProfiles(db).GetProfile(context.Background(), "u1")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, onboarding.ErrProfileNotFound)
	})
}

func TestPGProfiles_SaveProfile(t *testing.T) {
	t.Parallel()

	t.Run("saves trimmed values", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		err := onboarding.NewPGProfiles(db).SaveProfile(context.Background(), "u1", " Roofer ", "Top Roofs ")
		require.NoError(t, err)
		assert.Equal(t, []any{"u1", "Roofer", "Top Roofs"}, db.lastArgs)
		assert.Contains(t, db.lastSQL, "ON CONFLICT (user_id)")
	})

	t.Run("rejects blanks", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		err := onboarding.NewPGProfiles(db).SaveProfile(context.Background(), "u1", "Roofer", " ")
		assert.ErrorIs(t, err, onboarding.ErrIncompleteProfile)
		assert.Empty(t, db.lastSQL)
	})

	t.Run("wraps exec errors", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execErr: errors.New("read only")}
		err := onboarding.NewPGProfiles(db).SaveProfile(context.Background(), "u1", "Roofer", "Top Roofs")
		assert.ErrorIs(t, err, onboarding.ErrProfileSaveFailed)
	})
}
