package campusauth

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/password"
	"github.com/MrEthical07/campusauth/store"
)

// Payload is the identity and scope content of a token.
type Payload = jwt.Payload

// CookieDirective describes a cookie the transport must set.
type CookieDirective = jwt.CookieDirective

// Avatar is an optional profile image supplied at registration.
type Avatar = store.Avatar

// PasswordHasher hashes and verifies passwords. password.Argon2 is the
// default implementation.
type PasswordHasher = password.Hasher

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	FatherInitial string `json:"fatherInitial"`
}

// Normalize returns a copy with whitespace trimmed, the last name and father
// initial upper-cased and the email lower-cased.
func (in RegisterInput) Normalize() RegisterInput {
	return RegisterInput{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.ToUpper(strings.TrimSpace(in.LastName)),
		Email:         normalizeEmail(in.Email),
		Password:      strings.TrimSpace(in.Password),
		FatherInitial: strings.ToUpper(strings.TrimSpace(in.FatherInitial)),
	}
}

// Validate checks field shapes on a normalized input and returns the first
// violation as a FieldError.
func (in RegisterInput) Validate() error {
	switch {
	case in.FirstName == "":
		return newFieldError("firstName", "First name is required", ErrInvalidInput)
	case in.LastName == "":
		return newFieldError("lastName", "Last name is required", ErrInvalidInput)
	case !validEmail(in.Email):
		return newFieldError("email", "Email is not valid", ErrInvalidInput)
	case in.Password == "":
		return newFieldError("password", "Password is required", ErrInvalidInput)
	case !validInitial(in.FatherInitial):
		return newFieldError("fatherInitial", "Father initial must be a single letter", ErrInvalidInput)
	}
	return nil
}

// AuthResult is returned by Register, Login and Refresh. Only the access
// token is serialized; the refresh token travels in the cookie directive.
type AuthResult struct {
	AccessToken string `json:"accessToken"`

	refreshCookie jwt.CookieDirective
}

// RefreshCookie returns the cookie the transport must set on the response.
func (r AuthResult) RefreshCookie() CookieDirective {
	return r.refreshCookie
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validInitial(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}
