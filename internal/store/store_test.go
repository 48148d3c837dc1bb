package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResult struct {
	rows int64
	err  error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, f.err }

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))
	assert.ErrorIs(t, Translate(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, Translate(fmt.Errorf("scan: %w", sql.ErrNoRows)), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, Translate(other))
}

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, RequireAffected(fakeResult{rows: 1}))
	assert.ErrorIs(t, RequireAffected(fakeResult{rows: 0}), ErrNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, RequireAffected(fakeResult{err: boom}), boom)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c\\d`, EscapeLike(`c\d`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
