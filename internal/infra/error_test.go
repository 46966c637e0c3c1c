//go:build unit

package infra_test

import (
	"testing"

	"roomstay/internal/infra"
	"roomstay/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	t.Run("explicit kind wins", func(t *testing.T) {
		err := infra.WrapRepoErr("room not found", pgx.ErrNoRows, infra.KindNotFound)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("nil error still carries a kind", func(t *testing.T) {
		err := infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
		assert.Contains(t, err.Error(), "reservation not found")
	})

	t.Run("classifies by pg error code", func(t *testing.T) {
		cases := []struct {
			name string
			code string
			kind infra.RepositoryErrorKind
		}{
			{"unique violation", "23505", infra.KindDuplicateKey},
			{"foreign key violation", "23503", infra.KindForeignKeyViolated},
			{"exclusion constraint", "23P01", infra.KindConflict},
			{"statement timeout", "57014", infra.KindTimeout},
			{"lock not available", "55P03", infra.KindTimeout},
			{"anything else", "42601", infra.KindDBFailure},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := infra.WrapRepoErr("insert failed", &pgconn.PgError{Code: tc.code})
				assert.True(t, infra.IsKind(err, tc.kind))
			})
		}
	})

	t.Run("no rows classifies as not found", func(t *testing.T) {
		err := infra.WrapRepoErr("scan failed", pgx.ErrNoRows)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("wrapped pg errors still classify", func(t *testing.T) {
		inner := errs.Wrap(&pgconn.PgError{Code: "23505"}, "save payment")
		err := infra.WrapRepoErr("upsert failed", inner)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}

func TestIsKind(t *testing.T) {
	t.Run("false for unrelated errors", func(t *testing.T) {
		assert.False(t, infra.IsKind(errs.New("boom"), infra.KindNotFound))
		assert.False(t, infra.IsKind(nil, infra.KindNotFound))
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		err := errs.Wrap(infra.WrapRepoErr("gone", nil, infra.KindNotFound), "find reservation")
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, infra.IsNoRows(pgx.ErrNoRows))
	assert.True(t, infra.IsNoRows(errs.Wrap(pgx.ErrNoRows, "query")))
	assert.False(t, infra.IsNoRows(errs.New("boom")))
}
