package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIss    = "culturemap-identity"
)

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr), "expected *AuthenticationError, got %v", err)
	return authErr.Reason
}

func TestValidateProjectsClaims(t *testing.T) {
	token, err := NewIssuer(testSecret, testIss, time.Hour).Issue(42, "ana", RoleOrganizer)
	require.NoError(t, err)

	p, err := NewValidator(testSecret, testIss).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: 42, DisplayName: "ana", Role: RoleOrganizer}, *p)
}

func TestValidateDefaultsRoleToUser(t *testing.T) {
	v := NewValidator(testSecret, testIss)

	for _, role := range []Role{"", "superuser"} {
		token, err := NewIssuer(testSecret, testIss, time.Hour).Issue(7, "bo", role)
		require.NoError(t, err)
		p, err := v.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, p.Role, "role %q", role)
	}
}

func TestValidateFailures(t *testing.T) {
	v := NewValidator(testSecret, testIss)

	expired, err := NewIssuer(testSecret, testIss, -time.Minute).Issue(1, "x", RoleUser)
	require.NoError(t, err)
	forged, err := NewIssuer("other-secret", testIss, time.Hour).Issue(1, "x", RoleAdmin)
	require.NoError(t, err)
	foreign, err := NewIssuer(testSecret, "someone-else", time.Hour).Issue(1, "x", RoleAdmin)
	require.NoError(t, err)
	anonymousSubject, err := NewIssuer(testSecret, testIss, time.Hour).Issue(0, "x", RoleUser)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SubjectID:        1,
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: testIss, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SubjectID:        1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: testIss},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := []struct {
		name   string
		token  string
		reason Reason
	}{
		{"empty", "", ReasonMissing},
		{"garbage", "not.a.token", ReasonMalformed},
		{"expired", expired, ReasonExpired},
		{"wrong key", forged, ReasonBadSignature},
		{"wrong issuer", foreign, ReasonWrongIssuer},
		{"alg none", noneAlg, ReasonBadSignature},
		{"no exp", noExp, ReasonMalformed},
		{"no subject", anonymousSubject, ReasonMissingSubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := v.Validate(tc.token)
			assert.Nil(t, p)
			assert.Equal(t, tc.reason, reasonOf(t, err))
		})
	}
}

func TestValidateCacheNeverOutlivesToken(t *testing.T) {
	now := time.Now()
	issuer := NewIssuer(testSecret, testIss, time.Minute)
	issuer.now = func() time.Time { return now }
	token, err := issuer.Issue(9, "cy", RoleAdmin)
	require.NoError(t, err)

	v := NewValidator(testSecret, testIss)
	v.SetClock(func() time.Time { return now })

	_, err = v.Validate(token)
	require.NoError(t, err)
	_, err = v.Validate(token)
	require.NoError(t, err, "second call is served from the cache")

	v.SetClock(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = v.Validate(token)
	assert.Equal(t, ReasonExpired, reasonOf(t, err))
}

func TestParseBearer(t *testing.T) {
	tok, ok := ParseBearer("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = ParseBearer("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "Token abc"} {
		_, ok := ParseBearer(h)
		assert.False(t, ok, h)
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleOrganizer, ParseRole("organizer"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUser, ParseRole(""))
	assert.Equal(t, RoleUser, ParseRole("ADMIN"))
}
