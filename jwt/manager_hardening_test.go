package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/campusauth/scope"
)

func newEdKeys(t testing.TB) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func newTestManager(t testing.TB, mutate func(*Config)) (*Manager, ed25519.PrivateKey) {
	t.Helper()
	pub, priv := newEdKeys(t)
	cfg := Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "campusauth",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m, priv
}

func signed(t *testing.T, method gjwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	tok := gjwt.NewWithClaims(method, claims)
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestGeneratePairRoundTrip(t *testing.T) {
	m, _ := newTestManager(t, nil)
	universities := scope.Map{"uni-1": {Scopes: scope.Set{"read-grades": true}}}

	pair, err := m.GeneratePair(NewPayload("user-1", universities))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Fatalf("expected two distinct tokens, got %+v", pair)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("expected refresh to outlive access: %v vs %v", pair.RefreshExpiresAt, pair.AccessExpiresAt)
	}

	access, err := m.Parse(pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.User.ID != "user-1" || !access.User.Universities.Has("uni-1", "read-grades") {
		t.Fatalf("unexpected access payload: %+v", access)
	}

	refresh, err := m.ParseClaims(pair.RefreshToken, KindRefresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.Subject != "user-1" || refresh.ID == "" {
		t.Fatalf("expected subject and jti on refresh claims: %+v", refresh)
	}
	if len(refresh.User.Universities) != 1 {
		t.Fatalf("expected same scope snapshot in refresh token, got %+v", refresh.User.Universities)
	}
}

func TestGeneratePairSnapshotsScopes(t *testing.T) {
	m, _ := newTestManager(t, nil)
	universities := scope.Map{"uni-1": {Scopes: scope.Set{"read-grades": true}}}
	payload := Payload{User: User{ID: "user-1", Universities: universities}}

	pair, err := m.GeneratePair(payload)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	universities["uni-1"].Scopes["write-grades"] = true

	got, err := m.Parse(pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if got.User.Universities.Has("uni-1", "write-grades") {
		t.Fatal("token must not reflect later mutation of the input map")
	}
}

func TestGeneratePairEmptyScopesEncodeAsObject(t *testing.T) {
	m, _ := newTestManager(t, nil)
	pair, err := m.GeneratePair(NewPayload("user-1", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	got, err := m.Parse(pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if got.User.Universities == nil || len(got.User.Universities) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", got.User.Universities)
	}
}

func TestGeneratePairRequiresUserID(t *testing.T) {
	m, _ := newTestManager(t, nil)
	if _, err := m.GeneratePair(NewPayload(" ", nil)); err == nil {
		t.Fatal("expected missing user id to fail")
	}
}

func TestParseKindMismatch(t *testing.T) {
	m, _ := newTestManager(t, nil)
	pair, err := m.GeneratePair(NewPayload("user-1", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := m.Parse(pair.AccessToken, KindRefresh); !errors.Is(err, ErrTokenKindMismatch) {
		t.Fatalf("expected kind mismatch for access-as-refresh, got %v", err)
	}
	if _, err := m.Parse(pair.RefreshToken, KindAccess); !errors.Is(err, ErrTokenKindMismatch) {
		t.Fatalf("expected kind mismatch for refresh-as-access, got %v", err)
	}
}

func TestParseExpiredRefresh(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	m, _ := newTestManager(t, func(c *Config) { c.Clock = func() time.Time { return clock() } })

	pair, err := m.GeneratePair(NewPayload("user-1", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	clock = func() time.Time { return now.Add(2 * time.Hour) }

	if _, err := m.Parse(pair.RefreshToken, KindRefresh); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestParseRejectsTamperedAndEmpty(t *testing.T) {
	m, _ := newTestManager(t, nil)
	pair, err := m.GeneratePair(NewPayload("user-1", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := m.Parse(tampered, KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid for tampered token, got %v", err)
	}
	if _, err := m.Parse("", KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid for empty token, got %v", err)
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	m, _ := newTestManager(t, nil)

	claims := Claims{Kind: KindAccess, User: User{ID: "u"}, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		Issuer:    "campusauth",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token := signed(t, gjwt.SigningMethodHS256, []byte("secret-secret-secret-secret-secret"), claims)

	if _, err := m.Parse(token, KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected wrong algorithm to be rejected, got %v", err)
	}
}

func TestParseRejectsSubjectMismatchAndUnknownKind(t *testing.T) {
	m, priv := newTestManager(t, nil)

	mismatch := Claims{Kind: KindAccess, User: User{ID: "someone-else"}, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		Issuer:    "campusauth",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, mismatch), KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected subject mismatch to be invalid, got %v", err)
	}

	untyped := Claims{User: User{ID: "u"}, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		Issuer:    "campusauth",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, untyped), KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected missing typ to be invalid, got %v", err)
	}
}

func TestParseRequiresExpiry(t *testing.T) {
	m, priv := newTestManager(t, nil)
	claims := Claims{Kind: KindAccess, User: User{ID: "u"}, RegisteredClaims: gjwt.RegisteredClaims{
		Subject: "u",
		Issuer:  "campusauth",
	}}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, claims), KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token without exp to be invalid, got %v", err)
	}
}

func TestParseIssuerAudienceAndLeeway(t *testing.T) {
	m, priv := newTestManager(t, func(c *Config) {
		c.Audience = "portal"
		c.Leeway = 30 * time.Second
	})

	pair, err := m.GeneratePair(NewPayload("u", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := m.Parse(pair.AccessToken, KindAccess); err != nil {
		t.Fatalf("expected valid token to parse: %v", err)
	}

	base := func(iss, aud string, exp, iat time.Duration) Claims {
		return Claims{Kind: KindAccess, User: User{ID: "u"}, RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u",
			Issuer:    iss,
			Audience:  gjwt.ClaimStrings{aud},
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(exp)),
			IssuedAt:  gjwt.NewNumericDate(time.Now().Add(iat)),
		}}
	}

	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, base("other", "portal", time.Minute, 0)), KindAccess); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, base("campusauth", "other", time.Minute, 0)), KindAccess); err == nil {
		t.Fatal("expected wrong audience to fail")
	}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, base("campusauth", "portal", -15*time.Second, -time.Minute)), KindAccess); err != nil {
		t.Fatalf("expected token within leeway to pass: %v", err)
	}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, base("campusauth", "portal", -2*time.Minute, -3*time.Minute)), KindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token to fail with ErrTokenExpired, got %v", err)
	}
	if _, err := m.Parse(signed(t, gjwt.SigningMethodEdDSA, priv, base("campusauth", "portal", 48*time.Hour, 24*time.Hour)), KindAccess); err == nil {
		t.Fatal("expected far-future iat to fail")
	}
}

func TestParseUnknownKidFails(t *testing.T) {
	pub1, priv1 := newEdKeys(t)
	pub2, _ := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv1,
		PublicKey:     pub1,
		KeyID:         "k1",
		VerifyKeys:    map[string][]byte{"k1": pub1},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := Claims{Kind: KindAccess, User: User{ID: "u"}, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = "k2"
	bad, _ := tok.SignedString(priv1)
	if _, err := m.Parse(bad, KindAccess); err == nil {
		t.Fatal("expected unknown kid failure")
	}

	pair, err := m.GeneratePair(NewPayload("u", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := m.Parse(pair.AccessToken, KindAccess); err != nil {
		t.Fatalf("expected known kid token to pass: %v", err)
	}

	m2, _ := NewManager(Config{AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodEd25519, PublicKey: pub2, VerifyKeys: map[string][]byte{"k1": pub2}})
	if _, err := m2.Parse(pair.AccessToken, KindAccess); err == nil {
		t.Fatal("expected parse failure with mismatched key set")
	}
}

func TestHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	pair, err := m.GeneratePair(NewPayload("u", nil))
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := m.Parse(pair.RefreshToken, KindRefresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	pub, _ := newEdKeys(t)
	cases := map[string]Config{
		"no ttl":        {SigningMethod: MethodEd25519, PublicKey: pub},
		"refresh short": {AccessTTL: time.Hour, RefreshTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub},
		"short hs key":  {AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("short")},
		"no ed key":     {AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodEd25519},
		"bad method":    {AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: "rs256", PublicKey: pub},
		"big leeway":    {AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodEd25519, PublicKey: pub, Leeway: time.Hour},
		"bad cookie":    {AccessTTL: time.Minute, RefreshTTL: time.Hour, SigningMethod: MethodEd25519, PublicKey: pub, Cookie: CookieConfig{Name: "a b"}},
	}
	for name, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("%s: expected config to be rejected", name)
		}
	}
}
