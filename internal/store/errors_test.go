package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/models"
	"github.com/starford/giftcert/internal/query"
)

func TestKindOf(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, apperr.ErrNotFound},
		{"canceled", context.Canceled, apperr.ErrStoreUnavailable},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), apperr.ErrStoreUnavailable},
		{"conn done", sql.ErrConnDone, apperr.ErrStoreUnavailable},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, apperr.ErrStoreUnavailable},
		{"busy snapshot", sqlite3.Error{Code: sqlite3.ErrBusy, ExtendedCode: sqlite3.ErrBusySnapshot}, apperr.ErrConflict},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, apperr.ErrStoreUnavailable},
		{"cant open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, apperr.ErrStoreUnavailable},
		{"unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, apperr.ErrAlreadyExists},
		{"primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, apperr.ErrAlreadyExists},
		{"foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, apperr.ErrConflict},
		{"check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, apperr.ErrInvalidArgument},
		{"not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, apperr.ErrInvalidArgument},
		{"other constraint", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintTrigger}, apperr.ErrStore},
		{"corrupt", sqlite3.Error{Code: sqlite3.ErrCorrupt}, apperr.ErrStore},
		{"plain", errors.New("boom"), apperr.ErrStore},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, kindOf(tc.err))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	cause := errors.New("disk on fire")
	err := classify("load things", cause)
	assert.ErrorIs(t, err, apperr.ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store: load things:")

	already := fmt.Errorf("%w: tag 7", apperr.ErrNotFound)
	assert.Same(t, already, classify("again", already))
}

func mockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return New(conn), mock
}

func TestRepo_BusyIsUnavailable(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM tags WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})

	_, err := NewTagRepo(db).FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestRepo_UniqueViolationIsAlreadyExists(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (name, email) VALUES (?, ?)`)).
		WithArgs("Ann", "ann@example.com").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	u := models.User{Name: "Ann", Email: "ann@example.com"}
	err := NewUserRepo(db).Create(context.Background(), &u)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	assert.Zero(t, u.ID)
}

func TestRepo_BeginFailure(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin().WillReturnError(sqlite3.Error{Code: sqlite3.ErrLocked})

	_, err := NewUserRepo(db).FindPage(context.Background(), query.MustPagination(0, 10))
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestSearch_CountFailureRollsBack(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM certificates c`)).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrIoErr})
	mock.ExpectRollback()

	f, err := query.NewSearchFilter(query.FilterParams{Pagination: query.MustPagination(0, 5)})
	require.NoError(t, err)
	_, err = NewCertificateRepo(db, NewTagRepo(db)).FindByFilterAndPage(context.Background(), f)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestSearch_UnknownTagSkipsQueries(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM tags WHERE name IN (?)`)).
		WithArgs("nonexistent-tag").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	f, err := query.NewSearchFilter(query.FilterParams{
		Tags:       []string{"nonexistent-tag"},
		Pagination: query.MustPagination(0, 5),
	})
	require.NoError(t, err)
	page, err := NewCertificateRepo(db, NewTagRepo(db)).FindByFilterAndPage(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalMatching)
}

func TestRepo_DeleteMissingIsNotFound(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewOrderRepo(db).DeleteByID(context.Background(), 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
