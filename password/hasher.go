package password

// Hasher hashes new passwords and verifies candidates against stored hashes.
// Verify returns false with a nil error for a well-formed hash that does not
// match.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

var _ Hasher = (*Argon2)(nil)
