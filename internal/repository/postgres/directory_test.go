package postgres

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/gophfriends-server/internal/model"
)

func TestNewDirectoryRepository(t *testing.T) {
	db := &Connection{}
	repo := NewDirectoryRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestLockOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")

	assert.Equal(t, []uuid.UUID{a, b, c}, lockOrder([]uuid.UUID{c, a, b}))
	assert.Equal(t, []uuid.UUID{a, b}, lockOrder([]uuid.UUID{b, a, b, a}))
	assert.Empty(t, lockOrder(nil))
}

func TestLockOrder_DoesNotMutateInput(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	in := []uuid.UUID{b, a}

	_ = lockOrder(in)
	assert.Equal(t, []uuid.UUID{b, a}, in)
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "bob", want: "bob"},
		{in: "50%", want: `50\%`},
		{in: "a_b", want: `a\_b`},
		{in: `back\slash`, want: `back\\slash`},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestErrorClassification(t *testing.T) {
	t.Run("unique violation code", func(t *testing.T) {
		err := &pgconn.PgError{Code: pgUniqueViolation}
		assert.Equal(t, pgUniqueViolation, pgCode(err))
	})

	t.Run("non pg error has no code", func(t *testing.T) {
		assert.Equal(t, "", pgCode(errors.New("boom")))
	})

	t.Run("foreign key violation maps to not found", func(t *testing.T) {
		err := relationErr("insert", &pgconn.PgError{Code: pgForeignKeyViolation})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("storage error wraps both causes", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := storageErr("failed to get user", cause)
		assert.ErrorIs(t, err, model.ErrStorage)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "failed to get user")
	})
}
