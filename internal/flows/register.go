package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/password"
	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

// RegisterFailureKind classifies register flow failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailurePasswordPolicy
	RegisterFailureHash
	RegisterFailureDuplicate
	RegisterFailureCreate
	RegisterFailureAvatar
	RegisterFailureMint
)

// RegisterRequest is a normalized and shape-validated registration.
type RegisterRequest struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	FatherInitial string
	Avatar        *store.Avatar
}

// RegisterResult carries the new account id and pair, or failure metadata.
// AvatarErr is set when the avatar could not be stored but registration was
// allowed to complete.
type RegisterResult struct {
	Failure   RegisterFailureKind
	Err       error
	UserID    string
	Pair      jwt.Pair
	AvatarErr error
}

// RegisterDeps captures register flow dependencies.
type RegisterDeps struct {
	Accounts          store.AccountStore
	Avatars           store.AvatarStore
	Hasher            password.Hasher
	Tokens            PairMinter
	MinPasswordLength int
	MaxPasswordLength int
	// AvatarFatal turns an avatar failure into RegisterFailureAvatar. The
	// account row is kept either way.
	AvatarFatal bool
}

// RunRegister creates the account, attaches the optional avatar and mints a
// pair with an empty scope map.
func RunRegister(ctx context.Context, req RegisterRequest, deps RegisterDeps) RegisterResult {
	if n := len(req.Password); n < deps.MinPasswordLength || (deps.MaxPasswordLength > 0 && n > deps.MaxPasswordLength) {
		return RegisterResult{
			Failure: RegisterFailurePasswordPolicy,
			Err:     fmt.Errorf("password length %d outside [%d, %d]", n, deps.MinPasswordLength, deps.MaxPasswordLength),
		}
	}

	hash, err := deps.Hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return RegisterResult{Failure: RegisterFailurePasswordPolicy, Err: err}
		}
		return RegisterResult{Failure: RegisterFailureHash, Err: err}
	}

	account, err := deps.Accounts.CreateAccount(ctx, store.NewAccount{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		FatherInitial: req.FatherInitial,
		PasswordHash:  hash,
	})
	if err != nil {
		if store.IsDuplicate(err, "email") {
			return RegisterResult{Failure: RegisterFailureDuplicate, Err: err}
		}
		return RegisterResult{Failure: RegisterFailureCreate, Err: err}
	}

	result := RegisterResult{UserID: account.ID}

	if req.Avatar != nil {
		if avatarErr := attachAvatar(ctx, account.ID, *req.Avatar, deps); avatarErr != nil {
			if deps.AvatarFatal {
				result.Failure = RegisterFailureAvatar
				result.Err = avatarErr
				return result
			}
			result.AvatarErr = avatarErr
		}
	}

	pair, err := mint(account.ID, scope.Map{}, deps.Tokens)
	if err != nil {
		result.Failure = RegisterFailureMint
		result.Err = err
		return result
	}
	result.Pair = pair
	return result
}

func attachAvatar(ctx context.Context, userID string, avatar store.Avatar, deps RegisterDeps) error {
	if deps.Avatars == nil {
		return errors.New("no avatar store configured")
	}
	ref, err := deps.Avatars.StoreAvatar(ctx, userID, avatar)
	if err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	if err := deps.Accounts.UpdateAccount(ctx, userID, store.AccountPatch{AvatarPath: &ref}); err != nil {
		return fmt.Errorf("record avatar path: %w", err)
	}
	return nil
}
