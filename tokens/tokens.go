package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by [Guard.Token] when the wrapped source yields
// a JWT whose exp claim has passed.
var ErrTokenExpired = errors.New("bearer token expired")

// Source yields the bearer token for refresh requests. An empty token with a
// nil error means "no token available"; requests proceed unauthenticated.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed-token [Source].
type Static string

// Token returns the wrapped token.
func (s Static) Token(context.Context) (string, error) {
	return string(s), nil
}

// Func adapts a closure into a [Source].
type Func func(ctx context.Context) (string, error)

// Token invokes the closure.
func (f Func) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Guard wraps a [Source] and withholds JWTs that are already expired.
type Guard struct {
	source Source
	leeway time.Duration
	now    func() time.Time
}

// NewGuard creates a [Guard] around source. leeway extends the accepted
// lifetime past exp to absorb clock skew; negative leeway is treated as zero.
func NewGuard(source Source, leeway time.Duration) *Guard {
	if leeway < 0 {
		leeway = 0
	}
	return &Guard{
		source: source,
		leeway: leeway,
		now:    time.Now,
	}
}

// Token yields the wrapped source's token, or [ErrTokenExpired] when the
// token is a JWT whose exp claim (plus leeway) has passed. Tokens that do not
// parse as JWTs pass through unchanged.
func (g *Guard) Token(ctx context.Context) (string, error) {
	if g == nil || g.source == nil {
		return "", nil
	}

	tok, err := g.source.Token(ctx)
	if err != nil || tok == "" {
		return tok, err
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		// Opaque bearer; nothing to inspect.
		return tok, nil
	}

	if claims.ExpiresAt != nil && g.now().After(claims.ExpiresAt.Time.Add(g.leeway)) {
		return "", ErrTokenExpired
	}

	return tok, nil
}
