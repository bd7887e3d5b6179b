package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

var (
	_ store.AccountStore    = (*Store)(nil)
	_ store.MembershipStore = (*Store)(nil)
)

// Store implements the account and membership ports on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with the pgx driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateAccount(ctx context.Context, in store.NewAccount) (store.Account, error) {
	acc := store.Account{
		ID:            uuid.NewString(),
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		FatherInitial: in.FatherInitial,
		PasswordHash:  in.PasswordHash,
	}
	err := s.db.QueryRowContext(ctx,
		`insert into users(id, email, first_name, last_name, father_initial, password_hash)
		 values($1,$2,$3,$4,$5,$6) returning created_at`,
		acc.ID, acc.Email, acc.FirstName, acc.LastName, acc.FatherInitial, acc.PasswordHash,
	).Scan(&acc.CreatedAt)
	if err != nil {
		return store.Account{}, mapError(err)
	}
	return acc, nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (store.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, first_name, last_name, father_initial, password_hash, avatar_path, created_at
		 from users where email=$1`, email)
	var acc store.Account
	if err := row.Scan(&acc.ID, &acc.Email, &acc.FirstName, &acc.LastName, &acc.FatherInitial,
		&acc.PasswordHash, &acc.AvatarPath, &acc.CreatedAt); err != nil {
		return store.Account{}, mapError(err)
	}
	return acc, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, patch store.AccountPatch) error {
	if patch.AvatarPath == nil {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `update users set avatar_path=$2 where id=$1`, id, *patch.AvatarPath)
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

// FindMembershipsByUser returns one Membership per (university, role) the
// user holds, with the role's scope names.
func (s *Store) FindMembershipsByUser(ctx context.Context, userID string) ([]scope.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`select uu.university_id, r.name, s.name
		 from university_users uu
		 join roles r on r.id = uu.role_id
		 left join role_scopes rs on rs.role_id = r.id
		 left join scopes s on s.id = rs.scope_id
		 where uu.user_id = $1
		 order by uu.university_id, r.name, s.name`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var (
		res []scope.Membership
		idx = map[string]int{}
	)
	for rows.Next() {
		var (
			orgID, role string
			scopeName   sql.NullString
		)
		if err := rows.Scan(&orgID, &role, &scopeName); err != nil {
			return nil, err
		}
		key := orgID + "\x00" + role
		i, ok := idx[key]
		if !ok {
			res = append(res, scope.Membership{OrgID: orgID, Role: role})
			i = len(res) - 1
			idx[key] = i
		}
		if scopeName.Valid && strings.TrimSpace(scopeName.String) != "" {
			res[i].Scopes = append(res[i].Scopes, scopeName.String)
		}
	}
	return res, rows.Err()
}

// GrantRole adds userID to universityID with roleID.
func (s *Store) GrantRole(ctx context.Context, userID, universityID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into university_users(university_id, user_id, role_id) values($1,$2,$3)
		 on conflict do nothing`, universityID, userID, roleID)
	return mapError(err)
}

// RevokeRole removes the membership. Removing an absent membership is not an
// error.
func (s *Store) RevokeRole(ctx context.Context, userID, universityID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		`delete from university_users where university_id=$1 and user_id=$2 and role_id=$3`,
		universityID, userID, roleID)
	return mapError(err)
}
