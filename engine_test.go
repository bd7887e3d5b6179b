package campusauth_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrEthical07/campusauth"
	"github.com/MrEthical07/campusauth/internal/mocks"
	"github.com/MrEthical07/campusauth/password"
	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

const testPassword = "correct horse battery"

type harness struct {
	engine      *campusauth.Engine
	accounts    *mocks.MockAccountStore
	memberships *mocks.MockMembershipSource
	avatars     *mocks.MockAvatarStore
	sink        *campusauth.ChannelSink
}

func testConfig(t *testing.T) campusauth.Config {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	cfg := campusauth.DefaultConfig()
	cfg.JWT.PrivateKey = priv
	cfg.JWT.PublicKey = pub
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	return cfg
}

func newHarness(t *testing.T, mutate func(*campusauth.Config), opts ...func(*campusauth.Builder)) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		accounts:    mocks.NewMockAccountStore(ctrl),
		memberships: mocks.NewMockMembershipSource(ctrl),
		avatars:     mocks.NewMockAvatarStore(ctrl),
		sink:        campusauth.NewChannelSink(256),
	}

	cfg := testConfig(t)
	if mutate != nil {
		mutate(&cfg)
	}
	b := campusauth.New().
		WithConfig(cfg).
		WithAccountStore(h.accounts).
		WithMembershipStore(h.memberships).
		WithAvatarStore(h.avatars).
		WithAuditSink(h.sink)
	for _, opt := range opts {
		opt(b)
	}

	engine, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	h.engine = engine
	return h
}

// events closes the engine and returns every audit event it emitted.
func (h *harness) events() []campusauth.AuditEvent {
	h.engine.Close()
	var out []campusauth.AuditEvent
	for {
		select {
		case ev := <-h.sink.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func hashOf(t *testing.T, plain string) string {
	t.Helper()
	cfg := password.DefaultConfig()
	cfg.Memory = 8 * 1024
	cfg.Time = 1
	cfg.Parallelism = 1
	h, err := password.NewArgon2(cfg)
	require.NoError(t, err)
	encoded, err := h.Hash(plain)
	require.NoError(t, err)
	return encoded
}

func validRegistration() campusauth.RegisterInput {
	return campusauth.RegisterInput{
		FirstName:     "  Ana ",
		LastName:      "pop",
		Email:         " Ana@UBB.ro ",
		Password:      testPassword,
		FatherInitial: "i",
	}
}

func TestRegisterIssuesEmptyScopeMap(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.accounts.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in store.NewAccount) (store.Account, error) {
			assert.Equal(t, "ana@ubb.ro", in.Email)
			assert.Equal(t, "Ana", in.FirstName)
			assert.Equal(t, "POP", in.LastName)
			assert.Equal(t, "I", in.FatherInitial)
			assert.NotEqual(t, testPassword, in.PasswordHash)
			assert.True(t, strings.HasPrefix(in.PasswordHash, "$argon2id$"))
			return store.Account{ID: "user-1", Email: in.Email}, nil
		})

	res, err := h.engine.Register(ctx, validRegistration(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)

	payload, err := h.engine.ValidateAccess(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.User.ID)
	assert.NotNil(t, payload.User.Universities)
	assert.Empty(t, payload.User.Universities)

	cookie := res.RefreshCookie()
	assert.Equal(t, "refresh_token", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HTTPOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestRegisterValidationStopsBeforeStore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*campusauth.RegisterInput)
		field  string
	}{
		{"first name", func(in *campusauth.RegisterInput) { in.FirstName = " " }, "firstName"},
		{"last name", func(in *campusauth.RegisterInput) { in.LastName = "" }, "lastName"},
		{"email", func(in *campusauth.RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"password", func(in *campusauth.RegisterInput) { in.Password = "   " }, "password"},
		{"father initial", func(in *campusauth.RegisterInput) { in.FatherInitial = "AB" }, "fatherInitial"},
		{"father initial digit", func(in *campusauth.RegisterInput) { in.FatherInitial = "7" }, "fatherInitial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			in := validRegistration()
			tt.mutate(&in)

			_, err := h.engine.Register(context.Background(), in, nil)
			require.ErrorIs(t, err, campusauth.ErrInvalidInput)
			fe, ok := campusauth.AsFieldError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	h := newHarness(t, nil)

	in := validRegistration()
	in.Password = "short"
	_, err := h.engine.Register(context.Background(), in, nil)
	require.ErrorIs(t, err, campusauth.ErrPasswordPolicy)
	fe, ok := campusauth.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "password", fe.Field)
	assert.Equal(t, "Password must be at least 10 characters", fe.Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{}, &store.DuplicateKeyError{Fields: []string{"email"}})

	_, err := h.engine.Register(context.Background(), validRegistration(), nil)
	require.ErrorIs(t, err, campusauth.ErrDuplicateEmail)
	fe, ok := campusauth.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "email", fe.Field)
	assert.Equal(t, "Email is already in use", fe.Message)

	assert.Equal(t, uint64(1), h.engine.MetricsSnapshot().Counters[campusauth.MetricRegisterDuplicate])
}

func TestRegisterStoreFailureIsOpaque(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{}, errors.New("pq: connection to 10.0.0.7 refused"))

	_, err := h.engine.Register(context.Background(), validRegistration(), nil)
	require.ErrorIs(t, err, campusauth.ErrInternal)
	assert.NotContains(t, err.Error(), "10.0.0.7")
	assert.True(t, campusauth.IsInfraError(err))
}

func avatarUpload() *campusauth.Avatar {
	return &campusauth.Avatar{
		Filename:    "me.png",
		ContentType: "image/png",
		Content:     bytes.NewReader([]byte("\x89PNG\r\n\x1a\n")),
	}
}

func TestRegisterStoresAvatar(t *testing.T) {
	h := newHarness(t, nil)
	gomock.InOrder(
		h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
			Return(store.Account{ID: "user-1"}, nil),
		h.avatars.EXPECT().StoreAvatar(gomock.Any(), "user-1", gomock.Any()).
			Return("user-1/avatar.png", nil),
		h.accounts.EXPECT().UpdateAccount(gomock.Any(), "user-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, patch store.AccountPatch) error {
				require.NotNil(t, patch.AvatarPath)
				assert.Equal(t, "user-1/avatar.png", *patch.AvatarPath)
				return nil
			}),
	)

	_, err := h.engine.Register(context.Background(), validRegistration(), avatarUpload())
	require.NoError(t, err)
}

func TestRegisterAvatarFailureKeepsAccount(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{ID: "user-1"}, nil)
	h.avatars.EXPECT().StoreAvatar(gomock.Any(), "user-1", gomock.Any()).
		Return("", errors.New("disk full"))

	res, err := h.engine.Register(context.Background(), validRegistration(), avatarUpload())
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, uint64(1), h.engine.MetricsSnapshot().Counters[campusauth.MetricAvatarFailure])

	var types []string
	for _, ev := range h.events() {
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []string{"avatar_failure", "register_success"}, types)
}

func TestRegisterAvatarFailureFailsRegistration(t *testing.T) {
	h := newHarness(t, func(c *campusauth.Config) {
		c.Avatar.FailurePolicy = campusauth.AvatarFailRegistration
	})
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{ID: "user-1"}, nil)
	h.avatars.EXPECT().StoreAvatar(gomock.Any(), "user-1", gomock.Any()).
		Return("", errors.New("disk full"))

	_, err := h.engine.Register(context.Background(), validRegistration(), avatarUpload())
	require.ErrorIs(t, err, campusauth.ErrInternal)
	assert.NotContains(t, err.Error(), "disk full")
}

func TestLoginEmbedsCurrentScopes(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), "ana@ubb.ro").
		Return(store.Account{ID: "user-1", Email: "ana@ubb.ro", PasswordHash: hashOf(t, testPassword)}, nil)
	h.memberships.EXPECT().FindMembershipsByUser(gomock.Any(), "user-1").
		Return([]scope.Membership{
			{OrgID: "ubb", Role: "Teacher", Scopes: []string{"read-grades", "write-grades"}},
			{OrgID: "ubb", Role: "Admin", Scopes: []string{"manage-users"}},
			{OrgID: "upb", Role: "Guest"},
		}, nil)

	res, err := h.engine.Login(ctx, " ANA@ubb.ro", testPassword)
	require.NoError(t, err)

	payload, err := h.engine.ValidateAccess(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.User.ID)
	assert.Equal(t, scope.Map{
		"ubb": {Scopes: scope.Set{"read-grades": true, "write-grades": true, "manage-users": true}},
		"upb": {Scopes: scope.Set{}},
	}, payload.User.Universities)
	assert.True(t, payload.User.Universities.Has("ubb", "manage-users"))
	assert.False(t, payload.User.Universities.Has("upb", "manage-users"))
}

func TestLoginUnknownEmail(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), "ghost@ubb.ro").
		Return(store.Account{}, store.ErrNotFound)

	_, err := h.engine.Login(context.Background(), "ghost@ubb.ro", testPassword)
	require.ErrorIs(t, err, campusauth.ErrNoSuchAccount)
	fe, ok := campusauth.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "email", fe.Field)
	assert.Equal(t, "There is no user registered with this email", fe.Message)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), "ana@ubb.ro").
		Return(store.Account{ID: "user-1", PasswordHash: hashOf(t, testPassword)}, nil)

	_, err := h.engine.Login(context.Background(), "ana@ubb.ro", "wrong password!")
	require.ErrorIs(t, err, campusauth.ErrBadPassword)
	fe, ok := campusauth.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "password", fe.Field)
	assert.Equal(t, "Incorrect password", fe.Message)
}

func TestLoginRequiresFields(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.engine.Login(context.Background(), "  ", testPassword)
	require.ErrorIs(t, err, campusauth.ErrInvalidInput)
	fe, _ := campusauth.AsFieldError(err)
	assert.Equal(t, "email", fe.Field)

	_, err = h.engine.Login(context.Background(), "ana@ubb.ro", "")
	require.ErrorIs(t, err, campusauth.ErrInvalidInput)
	fe, _ = campusauth.AsFieldError(err)
	assert.Equal(t, "password", fe.Field)
}

func TestLoginMembershipFailureIsStoreUnavailable(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), "ana@ubb.ro").
		Return(store.Account{ID: "user-1", PasswordHash: hashOf(t, testPassword)}, nil)
	h.memberships.EXPECT().FindMembershipsByUser(gomock.Any(), "user-1").
		Return(nil, errors.New("read tcp: i/o timeout"))

	_, err := h.engine.Login(context.Background(), "ana@ubb.ro", testPassword)
	require.ErrorIs(t, err, campusauth.ErrStoreUnavailable)
	assert.NotContains(t, err.Error(), "timeout")
}

func TestRefreshReflectsMembershipChanges(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), "ana@ubb.ro").
		Return(store.Account{ID: "user-1", PasswordHash: hashOf(t, testPassword)}, nil)
	gomock.InOrder(
		h.memberships.EXPECT().FindMembershipsByUser(gomock.Any(), "user-1").
			Return([]scope.Membership{{OrgID: "ubb", Role: "Admin", Scopes: []string{"manage-users"}}}, nil),
		h.memberships.EXPECT().FindMembershipsByUser(gomock.Any(), "user-1").
			Return(nil, nil),
	)

	login, err := h.engine.Login(ctx, "ana@ubb.ro", testPassword)
	require.NoError(t, err)

	refreshed, err := h.engine.Refresh(ctx, login.RefreshCookie().Value)
	require.NoError(t, err)

	payload, err := h.engine.ValidateAccess(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.User.ID)
	assert.Empty(t, payload.User.Universities)
	assert.NotEmpty(t, refreshed.RefreshCookie().Value)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{ID: "user-1"}, nil)

	res, err := h.engine.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)

	_, err = h.engine.Refresh(context.Background(), res.AccessToken)
	require.ErrorIs(t, err, campusauth.ErrTokenKindMismatch)
	assert.True(t, campusauth.IsTokenError(err))
}

func TestAccessRejectsRefreshToken(t *testing.T) {
	h := newHarness(t, nil)
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{ID: "user-1"}, nil)

	res, err := h.engine.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)

	_, err = h.engine.ValidateAccess(context.Background(), res.RefreshCookie().Value)
	require.ErrorIs(t, err, campusauth.ErrTokenKindMismatch)
}

func TestRefreshExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	h := newHarness(t, nil, func(b *campusauth.Builder) { b.WithClock(clock) })
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{ID: "user-1"}, nil)

	res, err := h.engine.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)

	now = now.Add(7*24*time.Hour + time.Second)
	_, err = h.engine.Refresh(context.Background(), res.RefreshCookie().Value)
	require.ErrorIs(t, err, campusauth.ErrTokenExpired)

	_, err = h.engine.ValidateAccess(context.Background(), res.AccessToken)
	require.ErrorIs(t, err, campusauth.ErrTokenExpired)
}

func TestRefreshGarbageToken(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.engine.Refresh(context.Background(), "")
	require.ErrorIs(t, err, campusauth.ErrTokenInvalid)
	_, err = h.engine.Refresh(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, campusauth.ErrTokenInvalid)
}

func TestRefreshRejectsTokenFromOtherKey(t *testing.T) {
	issuer := newHarness(t, nil)
	verifier := newHarness(t, nil)
	issuer.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(store.Account{ID: "user-1"}, nil)

	res, err := issuer.engine.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)

	_, err = verifier.engine.Refresh(context.Background(), res.RefreshCookie().Value)
	require.ErrorIs(t, err, campusauth.ErrTokenInvalid)
}

func TestLogoutAlwaysFails(t *testing.T) {
	h := newHarness(t, nil)

	ctx := campusauth.WithClientIP(context.Background(), "203.0.113.9")
	require.ErrorIs(t, h.engine.Logout(ctx), campusauth.ErrUnauthorized)
	require.ErrorIs(t, h.engine.Logout(ctx), campusauth.ErrUnauthorized)

	clear := h.engine.ClearRefreshCookie()
	assert.Equal(t, "refresh_token", clear.Name)
	assert.Equal(t, -1, clear.MaxAge)
	assert.Empty(t, clear.Value)

	events := h.events()
	require.Len(t, events, 2)
	assert.Equal(t, "logout", events[0].EventType)
	assert.False(t, events[0].Success)
	assert.Equal(t, "unauthorized", events[0].Error)
	assert.Equal(t, "203.0.113.9", events[0].IP)
}

func TestNilEngineIsNotReady(t *testing.T) {
	var e *campusauth.Engine
	ctx := context.Background()

	_, err := e.Register(ctx, validRegistration(), nil)
	require.ErrorIs(t, err, campusauth.ErrEngineNotReady)
	_, err = e.Login(ctx, "ana@ubb.ro", testPassword)
	require.ErrorIs(t, err, campusauth.ErrEngineNotReady)
	_, err = e.Refresh(ctx, "token")
	require.ErrorIs(t, err, campusauth.ErrEngineNotReady)
	_, err = e.ValidateAccess(ctx, "token")
	require.ErrorIs(t, err, campusauth.ErrEngineNotReady)
	require.ErrorIs(t, e.Logout(ctx), campusauth.ErrUnauthorized)
	assert.Equal(t, "refresh_token", e.RefreshCookieName())
	assert.Zero(t, e.AuditDropped())
}

func TestAuditEventsCarryNoSecrets(t *testing.T) {
	h := newHarness(t, nil)
	ctx := campusauth.WithUserAgent(campusauth.WithClientIP(context.Background(), "198.51.100.4"), "test-agent")

	var stored string
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in store.NewAccount) (store.Account, error) {
			stored = in.PasswordHash
			return store.Account{ID: "user-1", PasswordHash: in.PasswordHash}, nil
		})
	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), "ana@ubb.ro").
		DoAndReturn(func(context.Context, string) (store.Account, error) {
			return store.Account{ID: "user-1", PasswordHash: stored}, nil
		}).Times(2)
	h.memberships.EXPECT().FindMembershipsByUser(gomock.Any(), "user-1").
		Return([]scope.Membership{{OrgID: "ubb", Scopes: []string{"read-grades"}}}, nil).Times(2)

	reg, err := h.engine.Register(ctx, validRegistration(), nil)
	require.NoError(t, err)
	_, err = h.engine.Login(ctx, "ana@ubb.ro", "wrong password!")
	require.Error(t, err)
	login, err := h.engine.Login(ctx, "ana@ubb.ro", testPassword)
	require.NoError(t, err)
	_, err = h.engine.Refresh(ctx, login.RefreshCookie().Value)
	require.NoError(t, err)

	secrets := []string{
		testPassword, "wrong password!", stored,
		reg.AccessToken, reg.RefreshCookie().Value,
		login.AccessToken, login.RefreshCookie().Value,
	}

	events := h.events()
	var types []string
	for _, ev := range events {
		types = append(types, ev.EventType)
		assert.Equal(t, "198.51.100.4", ev.IP)
		assert.Equal(t, "test-agent", ev.UserAgent)
		dump := ev.EventType + ev.UserID + ev.Error
		for k, v := range ev.Metadata {
			dump += k + v
		}
		for _, secret := range secrets {
			assert.NotContains(t, dump, secret)
		}
	}
	assert.Equal(t, []string{"register_success", "login_failure", "login_success", "refresh_success"}, types)
	assert.Equal(t, "invalid_credentials", events[1].Error)
	assert.Equal(t, "password", events[1].Metadata["field"])
}

func TestMetricsCountOutcomes(t *testing.T) {
	h := newHarness(t, nil, func(b *campusauth.Builder) { b.WithLatencyHistograms(true) })
	h.accounts.EXPECT().FindAccountByEmail(gomock.Any(), gomock.Any()).
		Return(store.Account{}, store.ErrNotFound).Times(2)

	_, _ = h.engine.Login(context.Background(), "a@ubb.ro", testPassword)
	_, _ = h.engine.Login(context.Background(), "b@ubb.ro", testPassword)
	_ = h.engine.Logout(context.Background())

	snap := h.engine.MetricsSnapshot()
	assert.Equal(t, uint64(2), snap.Counters[campusauth.MetricLoginFailure])
	assert.Equal(t, uint64(1), snap.Counters[campusauth.MetricLogout])
	assert.Zero(t, snap.Counters[campusauth.MetricLoginSuccess])

	var observed uint64
	for _, n := range snap.Histograms[campusauth.MetricLoginLatency] {
		observed += n
	}
	assert.Equal(t, uint64(2), observed)
}

func TestBuildRequirements(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountStore(ctrl)
	memberships := mocks.NewMockMembershipSource(ctrl)

	t.Run("account store", func(t *testing.T) {
		_, err := campusauth.New().WithConfig(testConfig(t)).WithMembershipStore(memberships).Build()
		require.ErrorContains(t, err, "account store")
	})
	t.Run("membership store", func(t *testing.T) {
		_, err := campusauth.New().WithConfig(testConfig(t)).WithAccountStore(accounts).Build()
		require.ErrorContains(t, err, "membership store")
	})
	t.Run("redis for rotation", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Security.EnforceRefreshRotation = true
		_, err := campusauth.New().WithConfig(cfg).
			WithAccountStore(accounts).WithMembershipStore(memberships).Build()
		require.ErrorContains(t, err, "redis")
	})
	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.JWT.PublicKey = nil
		_, err := campusauth.New().WithConfig(cfg).
			WithAccountStore(accounts).WithMembershipStore(memberships).Build()
		require.Error(t, err)
	})
	t.Run("single use", func(t *testing.T) {
		b := campusauth.New().WithConfig(testConfig(t)).
			WithAccountStore(accounts).WithMembershipStore(memberships)
		engine, err := b.Build()
		require.NoError(t, err)
		engine.Close()
		_, err = b.Build()
		require.ErrorContains(t, err, "already used")
	})
}

func TestCustomPasswordHasher(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockHasher(ctrl)
	h := newHarness(t, nil, func(b *campusauth.Builder) { b.WithPasswordHasher(hasher) })

	hasher.EXPECT().Hash(testPassword).Return("opaque-hash", nil)
	h.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in store.NewAccount) (store.Account, error) {
			assert.Equal(t, "opaque-hash", in.PasswordHash)
			return store.Account{ID: "user-1"}, nil
		})

	_, err := h.engine.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)
}
