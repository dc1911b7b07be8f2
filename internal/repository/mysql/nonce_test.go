package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"conduit-api/internal/repository"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.NonceRepository   = (*NonceRepository)(nil)
	_ repository.ArticleRepository = (*ArticleRepository)(nil)
	_ repository.EventRepository   = (*EventRepository)(nil)
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestNonceRepository_IncrementIsSingleUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNonceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `nonces` SET `counter`=counter + ? WHERE user_email = ?")).
		WithArgs(sqlmock.AnyArg(), "jake@jake.jake").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `counter` FROM `nonces` WHERE user_email = ?")).
		WithArgs("jake@jake.jake").
		WillReturnRows(sqlmock.NewRows([]string{"counter"}).AddRow(int64(3)))
	mock.ExpectCommit()

	got, err := repo.Increment(context.Background(), "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonceRepository_IncrementMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNonceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `nonces` SET `counter`=counter \\+ \\? WHERE user_email = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Increment(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonceRepository_IncrementStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNonceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `nonces`").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Increment(context.Background(), "jake@jake.jake")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonceRepository_CurrentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNonceRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `nonces` WHERE user_email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_email", "counter"}))

	_, err := repo.Current(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonceRepository_Current(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNonceRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `nonces` WHERE user_email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_email", "counter"}).AddRow(1, "jake@jake.jake", 4))

	got, err := repo.Current(context.Background(), "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestNonceRepository_ResetMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNonceRepository(db)

	mock.ExpectExec("UPDATE `nonces` SET `counter`=\\? WHERE user_email = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `nonces` WHERE user_email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.Reset(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
