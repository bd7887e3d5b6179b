package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

var (
	_ store.AccountStore    = (*Store)(nil)
	_ store.MembershipStore = (*Store)(nil)
)

type accountRow struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	FatherInitial string    `db:"father_initial"`
	PasswordHash  string    `db:"password_hash"`
	AvatarPath    string    `db:"avatar_path"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r accountRow) account() store.Account {
	return store.Account{
		ID:            r.ID,
		Email:         r.Email,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		FatherInitial: r.FatherInitial,
		PasswordHash:  r.PasswordHash,
		AvatarPath:    r.AvatarPath,
		CreatedAt:     r.CreatedAt,
	}
}

type membershipRow struct {
	UniversityID string         `db:"university_id"`
	Role         string         `db:"role"`
	Scope        sql.NullString `db:"scope"`
}

// Store implements the account and membership ports on SQLite.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database at dsn (a file path or ":memory:"), enables
// foreign keys and applies the schema. The pool is limited to one connection
// so an in-memory database is shared by all callers.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle. The caller is responsible for Migrate.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateAccount(ctx context.Context, in store.NewAccount) (store.Account, error) {
	row := accountRow{
		ID:            uuid.NewString(),
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		FatherInitial: in.FatherInitial,
		PasswordHash:  in.PasswordHash,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, father_initial, password_hash, avatar_path, created_at)
		VALUES (:id, :email, :first_name, :last_name, :father_initial, :password_hash, :avatar_path, :created_at)`, row)
	if err != nil {
		return store.Account{}, mapError(err)
	}
	return row.account(), nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (store.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, email, first_name, last_name, father_initial, password_hash, avatar_path, created_at
		FROM users WHERE email = ?`, email)
	if err != nil {
		return store.Account{}, mapError(err)
	}
	return row.account(), nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, patch store.AccountPatch) error {
	if patch.AvatarPath == nil {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET avatar_path = ? WHERE id = ?`, *patch.AvatarPath, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindMembershipsByUser(ctx context.Context, userID string) ([]scope.Membership, error) {
	var rows []membershipRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT uu.university_id, r.name AS role, s.name AS scope
		FROM university_users uu
		JOIN roles r ON r.id = uu.role_id
		LEFT JOIN role_scopes rs ON rs.role_id = r.id
		LEFT JOIN scopes s ON s.id = rs.scope_id
		WHERE uu.user_id = ?
		ORDER BY uu.university_id, r.name, s.name`, userID)
	if err != nil {
		return nil, mapError(err)
	}

	var (
		res []scope.Membership
		idx = map[string]int{}
	)
	for _, row := range rows {
		key := row.UniversityID + "\x00" + row.Role
		i, ok := idx[key]
		if !ok {
			res = append(res, scope.Membership{OrgID: row.UniversityID, Role: row.Role})
			i = len(res) - 1
			idx[key] = i
		}
		if row.Scope.Valid && strings.TrimSpace(row.Scope.String) != "" {
			res[i].Scopes = append(res[i].Scopes, row.Scope.String)
		}
	}
	return res, nil
}

// CreateUniversity inserts or renames a university.
func (s *Store) CreateUniversity(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO universities (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name`, id, name)
	return mapError(err)
}

// CreateRole inserts roleID if missing and attaches the named scopes to it.
func (s *Store) CreateRole(ctx context.Context, roleID, name string, scopes ...string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO roles (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name`, roleID, name); err != nil {
		return mapError(err)
	}
	for _, sc := range scopes {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO scopes (id, name) VALUES (?, ?)`, sc, sc); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO role_scopes (role_id, scope_id) SELECT ?, id FROM scopes WHERE name = ?`, roleID, sc); err != nil {
			return mapError(err)
		}
	}
	return tx.Commit()
}

// GrantRole adds userID to universityID with roleID.
func (s *Store) GrantRole(ctx context.Context, userID, universityID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO university_users (university_id, user_id, role_id) VALUES (?, ?, ?)`,
		universityID, userID, roleID)
	return mapError(err)
}

// RevokeRole removes the membership if present.
func (s *Store) RevokeRole(ctx context.Context, userID, universityID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM university_users WHERE university_id = ? AND user_id = ? AND role_id = ?`,
		universityID, userID, roleID)
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) &&
		(sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return &store.DuplicateKeyError{Fields: uniqueFields(sqlErr.Error()), Err: err}
	}
	return err
}

// uniqueFields parses "UNIQUE constraint failed: users.email, users.id".
func uniqueFields(msg string) []string {
	_, cols, ok := strings.Cut(msg, "failed: ")
	if !ok {
		return nil
	}
	var fields []string
	for _, c := range strings.Split(cols, ",") {
		c = strings.TrimSpace(c)
		if _, col, ok := strings.Cut(c, "."); ok {
			c = col
		}
		if c != "" {
			fields = append(fields, c)
		}
	}
	return fields
}
