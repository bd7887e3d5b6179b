package password

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

var (
	// ErrMalformedHash is returned for stored hashes that are not valid
	// Argon2id PHC strings.
	ErrMalformedHash = errors.New("password: malformed hash")
	// ErrUnsupportedHash is returned for well-formed PHC strings of another
	// algorithm or Argon2 version.
	ErrUnsupportedHash = errors.New("password: unsupported hash")
)

var b64 = base64.StdEncoding

// phc is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (p phc) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version, p.memory, p.time, p.parallelism,
		b64.EncodeToString(p.salt), b64.EncodeToString(p.key))
}

func malformed(what string) error { return fmt.Errorf("%w: %s", ErrMalformedHash, what) }

func decodePHC(s string) (phc, error) {
	fields := strings.Split(s, "$")
	if len(fields) != 6 || fields[0] != "" {
		return phc{}, malformed("field count")
	}
	if fields[1] != algorithmID {
		return phc{}, fmt.Errorf("%w: algorithm %q", ErrUnsupportedHash, fields[1])
	}

	v, ok := strings.CutPrefix(fields[2], "v=")
	if !ok {
		return phc{}, malformed("version")
	}
	version, err := strconv.Atoi(v)
	if err != nil {
		return phc{}, malformed("version")
	}
	if version != argon2.Version {
		return phc{}, fmt.Errorf("%w: version %d", ErrUnsupportedHash, version)
	}

	var out phc
	if err := out.decodeParams(fields[3]); err != nil {
		return phc{}, err
	}
	if out.salt, err = b64.DecodeString(fields[4]); err != nil || len(out.salt) < int(minSaltLength) {
		return phc{}, malformed("salt")
	}
	if out.key, err = b64.DecodeString(fields[5]); err != nil || len(out.key) == 0 {
		return phc{}, malformed("key")
	}
	return out, nil
}

// decodeParams accepts m, t and p exactly once each, in any order.
func (p *phc) decodeParams(s string) error {
	seen := map[string]bool{}
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || seen[name] {
			return malformed("parameters")
		}
		seen[name] = true

		bits := 32
		if name == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return malformed("parameter " + name)
		}

		switch name {
		case "m":
			if n < uint64(minMemoryKB) {
				return malformed("memory")
			}
			p.memory = uint32(n)
		case "t":
			if n < uint64(minTimeCost) {
				return malformed("time")
			}
			p.time = uint32(n)
		case "p":
			if n < uint64(minParallelism) {
				return malformed("parallelism")
			}
			p.parallelism = uint8(n)
		default:
			return malformed("parameter " + name)
		}
	}
	if len(seen) != 3 {
		return malformed("parameters")
	}
	return nil
}
