package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/types"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormGetUserNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	_, err := s.GetUser(context.Background(), 3)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualError(t, err, "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCreateMembershipUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "memberships"`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := s.Transaction(context.Background(), func(tx Tx) error {
		return tx.CreateMembership(context.Background(), &models.Membership{
			UserID: 1, ProjectID: 2, Role: types.MembershipRoleMember, IsActive: true,
		})
	})

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.EqualError(t, err, "membership already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCountOwners(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "memberships" WHERE project_id = \$1 AND role = \$2`).
		WithArgs(sqlmock.AnyArg(), "owner").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := s.CountOwners(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormListMembershipsPaging(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uint(4)
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "project_id", "role"}).AddRow(1, 4, 2, "owner")
	}
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = \$1 ORDER BY id LIMIT`).WillReturnRows(rows())
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = \$1 ORDER BY id$`).WillReturnRows(rows())

	_, err := s.ListMemberships(context.Background(), MembershipFilter{UserID: &userID})
	require.NoError(t, err)
	all, err := s.ListMemberships(context.Background(), MembershipFilter{UserID: &userID, Page: Unpaged})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLockProjectUsesRowLock(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE "projects"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "owner_id"}).
			AddRow(5, "Apollo", "active", 1))
	mock.ExpectCommit()

	var project *models.Project
	err := s.Transaction(context.Background(), func(tx Tx) error {
		var err error
		project, err = tx.LockProject(context.Background(), 5)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, uint(5), project.ID)
	assert.Equal(t, types.ProjectStatusActive, project.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransactionRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.Transaction(context.Background(), func(Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeleteProjectRemovesChildren(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	for _, table := range []string{"tasks", "comments", "files", "memberships"} {
		mock.ExpectExec(`DELETE FROM "` + table + `" WHERE project_id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`DELETE FROM "projects" WHERE "projects"."id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteProject(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeleteMissingProject(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	for _, table := range []string{"tasks", "comments", "files", "memberships"} {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`DELETE FROM "projects"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.DeleteProject(context.Background(), 9)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "user"))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, "task"), apperr.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, "user"), apperr.ErrConflict)

	raw := errors.New("connection refused")
	err := translate(raw, "projects")
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.EqualError(t, err, "projects: connection refused")
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in, want Page
	}{
		{Page{}, Page{Skip: 0, Limit: DefaultLimit}},
		{Page{Skip: -4, Limit: 10}, Page{Skip: 0, Limit: 10}},
		{Page{Skip: 5, Limit: 500}, Page{Skip: 5, Limit: DefaultLimit}},
		{Unpaged, Page{All: true}},
		{Page{Skip: -1, Limit: 7, All: true}, Page{All: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}
