package store

import (
	"context"
	"io"
	"time"

	"github.com/MrEthical07/campusauth/scope"
)

// Account is a registered user as persisted.
type Account struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	FatherInitial string
	PasswordHash  string
	AvatarPath    string
	CreatedAt     time.Time
}

// NewAccount carries the normalized fields of a registration. Email
// uniqueness is enforced by the store.
type NewAccount struct {
	Email         string
	FirstName     string
	LastName      string
	FatherInitial string
	PasswordHash  string
}

// AccountPatch lists the fields UpdateAccount may change. Nil fields are left
// untouched.
type AccountPatch struct {
	AvatarPath *string
}

// Avatar is an uploaded profile image.
type Avatar struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// AccountStore persists accounts.
type AccountStore interface {
	// CreateAccount inserts a new account and returns it with its id. A
	// taken email yields *DuplicateKeyError.
	CreateAccount(ctx context.Context, in NewAccount) (Account, error)
	// FindAccountByEmail returns ErrNotFound when no account matches.
	FindAccountByEmail(ctx context.Context, email string) (Account, error)
	UpdateAccount(ctx context.Context, id string, patch AccountPatch) error
}

// MembershipStore lists a user's university roles and their scopes.
type MembershipStore interface {
	scope.MembershipSource
}

// AvatarStore persists avatar files and returns a reference to store on the
// account.
type AvatarStore interface {
	StoreAvatar(ctx context.Context, userID string, avatar Avatar) (string, error)
}
