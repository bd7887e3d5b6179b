package flows

import "github.com/MrEthical07/campusauth/jwt"

// ValidateFailureKind classifies access-token validation failures.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureEmpty
	ValidateFailureParse
)

// ValidateResult carries the verified payload or failure metadata.
type ValidateResult struct {
	Failure ValidateFailureKind
	Err     error
	Payload jwt.Payload
}

// ValidateDeps captures access validation dependencies.
type ValidateDeps struct {
	Parser TokenParser
}

// RunValidateAccess verifies a bearer access token. It is stateless: no
// store or Redis lookups are made.
func RunValidateAccess(accessToken string, deps ValidateDeps) ValidateResult {
	if accessToken == "" {
		return ValidateResult{Failure: ValidateFailureEmpty, Err: jwt.ErrTokenInvalid}
	}
	claims, err := deps.Parser.ParseClaims(accessToken, jwt.KindAccess)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureParse, Err: err}
	}
	return ValidateResult{Payload: claims.Payload()}
}
