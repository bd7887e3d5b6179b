package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/campusauth/scope"
)

// Kind tags a token as access or refresh. It travels in the "typ" claim so a
// token of one kind is never accepted where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) valid() bool {
	return k == KindAccess || k == KindRefresh
}

// User is the identity section of a token.
type User struct {
	ID           string    `json:"id"`
	Universities scope.Map `json:"universities"`
}

// Payload is the application-visible content of a token.
type Payload struct {
	User User `json:"user"`
}

// Claims is the full signed claim set.
type Claims struct {
	Kind Kind `json:"typ"`
	User User `json:"user"`
	jwt.RegisteredClaims
}

// Payload strips issuance metadata from c.
func (c *Claims) Payload() Payload {
	return Payload{User: User{ID: c.User.ID, Universities: c.User.Universities}}
}

// NewPayload builds a payload for userID carrying a copy of universities.
func NewPayload(userID string, universities scope.Map) Payload {
	return Payload{User: User{ID: userID, Universities: universities.Clone()}}
}
