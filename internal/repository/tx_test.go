package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunnerCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE classes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	runner := NewTxRunner(db, 2, nil)
	err := runner.WithTx(context.Background(), func(exec sqlx.ExtContext) error {
		_, err := exec.ExecContext(context.Background(), "UPDATE classes SET current_enrollment = 1")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRollsBackWithoutRetryOnDomainError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("class frozen")
	calls := 0
	runner := NewTxRunner(db, 3, nil)
	err := runner.WithTx(context.Background(), func(exec sqlx.ExtContext) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRetriesSerializationFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	runner := NewTxRunner(db, 1, nil)
	err := runner.WithTx(context.Background(), func(exec sqlx.ExtContext) error {
		calls++
		if calls == 1 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerGivesUpAfterRetries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	runner := NewTxRunner(db, 1, nil)
	err := runner.WithTx(context.Background(), func(exec sqlx.ExtContext) error {
		return &pq.Error{Code: "40P01"}
	})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
