package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db), mock
}

func TestCreateAccount(t *testing.T) {
	s, mock := newMock(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "ana@uni.ro", "Ana", "POP", "I", "$argon2id$hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	acc, err := s.CreateAccount(context.Background(), store.NewAccount{
		Email: "ana@uni.ro", FirstName: "Ana", LastName: "POP", FatherInitial: "I", PasswordHash: "$argon2id$hash",
	})
	require.NoError(t, err)
	assert.Len(t, acc.ID, 36)
	assert.Equal(t, created, acc.CreatedAt)
	assert.Equal(t, "POP", acc.LastName)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	cases := map[string]*pgconn.PgError{
		"column":     {Code: pgerrcode.UniqueViolation, ColumnName: "email"},
		"detail":     {Code: pgerrcode.UniqueViolation, Detail: "Key (email)=(ana@uni.ro) already exists."},
		"constraint": {Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"},
	}
	for name, pgErr := range cases {
		t.Run(name, func(t *testing.T) {
			s, mock := newMock(t)
			mock.ExpectQuery("insert into users").WillReturnError(pgErr)

			_, err := s.CreateAccount(context.Background(), store.NewAccount{Email: "ana@uni.ro"})
			require.Error(t, err)
			assert.True(t, store.IsDuplicate(err, "email"), "got %v", err)

			var dup *store.DuplicateKeyError
			require.True(t, errors.As(err, &dup))
			assert.ErrorIs(t, err, pgErr)
		})
	}
}

func TestCreateAccountOtherErrorPassesThrough(t *testing.T) {
	s, mock := newMock(t)
	boom := &pgconn.PgError{Code: pgerrcode.ConnectionFailure}
	mock.ExpectQuery("insert into users").WillReturnError(boom)

	_, err := s.CreateAccount(context.Background(), store.NewAccount{Email: "ana@uni.ro"})
	require.ErrorIs(t, err, boom)
	assert.False(t, store.IsDuplicate(err, "email"))
}

func TestFindAccountByEmail(t *testing.T) {
	s, mock := newMock(t)
	cols := []string{"id", "email", "first_name", "last_name", "father_initial", "password_hash", "avatar_path", "created_at"}
	mock.ExpectQuery("select id, email.*from users where email").
		WithArgs("ana@uni.ro").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u-1", "ana@uni.ro", "Ana", "POP", "I", "hash", "avatars/u-1/a.png", time.Now()))

	acc, err := s.FindAccountByEmail(context.Background(), "ana@uni.ro")
	require.NoError(t, err)
	assert.Equal(t, "u-1", acc.ID)
	assert.Equal(t, "avatars/u-1/a.png", acc.AvatarPath)
}

func TestFindAccountByEmailNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("select id, email.*from users where email").WillReturnError(sql.ErrNoRows)

	_, err := s.FindAccountByEmail(context.Background(), "nobody@uni.ro")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateAccount(t *testing.T) {
	s, mock := newMock(t)
	path := "avatars/u-1/a.png"
	mock.ExpectExec("update users set avatar_path").WithArgs("u-1", path).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.UpdateAccount(context.Background(), "u-1", store.AccountPatch{AvatarPath: &path}))

	mock.ExpectExec("update users set avatar_path").WithArgs("u-2", path).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, s.UpdateAccount(context.Background(), "u-2", store.AccountPatch{AvatarPath: &path}), store.ErrNotFound)

	require.NoError(t, s.UpdateAccount(context.Background(), "u-1", store.AccountPatch{}))
}

func TestFindMembershipsByUser(t *testing.T) {
	s, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"university_id", "role", "scope"}).
		AddRow("uni-1", "admin", "manage-users").
		AddRow("uni-1", "admin", "read-grades").
		AddRow("uni-1", "teacher", "write-grades").
		AddRow("uni-2", "guest", nil)
	mock.ExpectQuery("from university_users").WithArgs("u-1").WillReturnRows(rows)

	got, err := s.FindMembershipsByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []scope.Membership{
		{OrgID: "uni-1", Role: "admin", Scopes: []string{"manage-users", "read-grades"}},
		{OrgID: "uni-1", Role: "teacher", Scopes: []string{"write-grades"}},
		{OrgID: "uni-2", Role: "guest"},
	}, got)

	m := scope.Fold(got)
	assert.True(t, m.Has("uni-1", "write-grades"))
	assert.Contains(t, m, "uni-2")
}

func TestFindMembershipsByUserError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("from university_users").WillReturnError(errors.New("conn reset"))

	_, err := s.FindMembershipsByUser(context.Background(), "u-1")
	require.Error(t, err)
}

func TestGrantAndRevokeRole(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("insert into university_users").WithArgs("uni-1", "u-1", "admin").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("delete from university_users").WithArgs("uni-1", "u-1", "admin").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.GrantRole(context.Background(), "u-1", "uni-1", "admin"))
	require.NoError(t, s.RevokeRole(context.Background(), "u-1", "uni-1", "admin"))
}

func TestMigrateAppliesPendingFiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("0001_accounts").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("0002_memberships").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS universities").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("0002_memberships").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldsFromConstraint(t *testing.T) {
	assert.Equal(t, []string{"email"}, fieldsFromConstraint("users_email_key"))
	assert.Nil(t, fieldsFromConstraint("users_pkey"))
	assert.Nil(t, fieldsFromConstraint("users_first_name_key"))
}
