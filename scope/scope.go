package scope

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStoreUnavailable is returned when memberships cannot be loaded.
var ErrStoreUnavailable = errors.New("scope: membership store unavailable")

// Set is the set of capability names granted within one university.
type Set map[string]bool

// Org holds the capabilities for a single university.
type Org struct {
	Scopes Set `json:"scopes"`
}

// Map keys university ids to the capabilities the user holds there.
type Map map[string]Org

// Membership is one user-university-role row as reported by the store,
// flattened to the scope names attached to the role.
type Membership struct {
	OrgID  string
	Role   string
	Scopes []string
}

// MembershipSource loads the memberships of a user.
type MembershipSource interface {
	FindMembershipsByUser(ctx context.Context, userID string) ([]Membership, error)
}

// Resolver turns memberships into a Map.
type Resolver struct {
	source MembershipSource
}

// NewResolver returns a Resolver reading from source.
func NewResolver(source MembershipSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the live scope map for userID. A user with no memberships
// resolves to an empty, non-nil map. On store failure no partial map is
// returned.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Map, error) {
	if r == nil || r.source == nil {
		return nil, fmt.Errorf("%w: resolver not configured", ErrStoreUnavailable)
	}
	rows, err := r.source.FindMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return Fold(rows), nil
}

// Fold reduces membership rows to a Map. Rows for the same university are
// merged; blank scope names are ignored.
func Fold(rows []Membership) Map {
	out := make(Map, len(rows))
	for _, row := range rows {
		org, ok := out[row.OrgID]
		if !ok {
			org = Org{Scopes: Set{}}
		}
		for _, name := range row.Scopes {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			org.Scopes[name] = true
		}
		out[row.OrgID] = org
	}
	return out
}

// Has reports whether capability is granted in orgID.
func (m Map) Has(orgID, capability string) bool {
	org, ok := m[orgID]
	if !ok {
		return false
	}
	return org.Scopes[capability]
}

// Clone returns a deep copy of m. Clone of a nil map is an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for id, org := range m {
		set := make(Set, len(org.Scopes))
		for name, granted := range org.Scopes {
			set[name] = granted
		}
		out[id] = Org{Scopes: set}
	}
	return out
}
