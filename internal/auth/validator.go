package auth

import (
	"time"

	"culturemap/internal/metrics"
	"culturemap/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

const principalCacheSize = 4096

// Validator verifies claim tokens and projects them into Principals.
// It performs no store lookups: the staleness window of a role change or
// account removal equals the token TTL.
type Validator struct {
	secret []byte
	issuer string
	now    func() time.Time
	cache  *utils.Cache[Principal]
}

// NewValidator trusts HS256 tokens signed with secret. An empty issuer
// disables the iss check.
func NewValidator(secret, issuer string) *Validator {
	cache, err := utils.NewCache[Principal](principalCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &Validator{secret: []byte(secret), issuer: issuer, now: time.Now, cache: cache}
}

// SetClock replaces the time source for expiry checks.
func (v *Validator) SetClock(now func() time.Time) {
	v.now = now
	v.cache.SetClock(now)
}

// Validate verifies signature and expiry and returns the projected Principal.
// Every failure is an *AuthenticationError.
func (v *Validator) Validate(token string) (*Principal, error) {
	if token == "" {
		return nil, v.fail(ReasonMissing, nil)
	}
	if p, ok := v.cache.Get(token); ok {
		return &p, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, v.fail(classify(err), err)
	}
	if claims.SubjectID == 0 {
		return nil, v.fail(ReasonMissingSubject, nil)
	}

	p := Principal{
		ID:          claims.SubjectID,
		DisplayName: claims.DisplayName,
		Role:        ParseRole(claims.Role),
	}
	v.cache.Set(token, p, claims.ExpiresAt.Time)
	return &p, nil
}

func (v *Validator) fail(reason Reason, err error) error {
	metrics.AuthFailures.WithLabelValues(string(reason)).Inc()
	return &AuthenticationError{Reason: reason, Err: err}
}
