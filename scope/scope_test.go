package scope

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(ctx context.Context, userID string) ([]Membership, error)

func (f sourceFunc) FindMembershipsByUser(ctx context.Context, userID string) ([]Membership, error) {
	return f(ctx, userID)
}

func TestResolveFoldsMemberships(t *testing.T) {
	var gotUser string
	r := NewResolver(sourceFunc(func(_ context.Context, userID string) ([]Membership, error) {
		gotUser = userID
		return []Membership{
			{OrgID: "u1", Role: "admin", Scopes: []string{"manage-users", "read-grades"}},
			{OrgID: "u1", Role: "teacher", Scopes: []string{"read-grades", "write-grades"}},
			{OrgID: "u2", Role: "student", Scopes: []string{"read-grades", " "}},
		}, nil
	}))

	got, err := r.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, Map{
		"u1": {Scopes: Set{"manage-users": true, "read-grades": true, "write-grades": true}},
		"u2": {Scopes: Set{"read-grades": true}},
	}, got)
	assert.True(t, got.Has("u1", "write-grades"))
	assert.False(t, got.Has("u2", "write-grades"))
	assert.False(t, got.Has("u3", "read-grades"))
}

func TestResolveNoMembershipsIsEmptyMap(t *testing.T) {
	r := NewResolver(sourceFunc(func(context.Context, string) ([]Membership, error) {
		return nil, nil
	}))

	got, err := r.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestResolveMembershipWithoutScopesKeepsOrg(t *testing.T) {
	got := Fold([]Membership{{OrgID: "u1", Role: "guest"}})
	require.Contains(t, got, "u1")
	assert.Empty(t, got["u1"].Scopes)
}

func TestResolveStoreFailure(t *testing.T) {
	r := NewResolver(sourceFunc(func(context.Context, string) ([]Membership, error) {
		return nil, errors.New("connection refused")
	}))

	got, err := r.Resolve(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, got)
}

func TestResolveUnconfigured(t *testing.T) {
	var r *Resolver
	_, err := r.Resolve(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMapJSONShape(t *testing.T) {
	m := Map{"u1": {Scopes: Set{"read-grades": true}}}
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"u1":{"scopes":{"read-grades":true}}}`, string(raw))
}

func TestCloneIsDeep(t *testing.T) {
	m := Map{"u1": {Scopes: Set{"read-grades": true}}}
	c := m.Clone()
	c["u1"].Scopes["write-grades"] = true
	assert.False(t, m.Has("u1", "write-grades"))

	var nilMap Map
	assert.NotNil(t, nilMap.Clone())
}
