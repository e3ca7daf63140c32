package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"cafeteria-system/internal/common/apperr"
)

type fakeRow struct {
	owner string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.owner
	return nil
}

type fakeQuerier struct {
	tokens map[string]string
	err    error
}

func (q fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if q.err != nil {
		return fakeRow{err: q.err}
	}
	owner, ok := q.tokens[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{owner: owner}
}

func sign(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestPGResolver(t *testing.T) {
	r := NewPGResolver(fakeQuerier{tokens: map[string]string{"tok-1": "s-100"}})

	owner, err := r.Resolve(context.Background(), "tok-1")
	if err != nil || owner != "s-100" {
		t.Fatalf("owner=%q err=%v", owner, err)
	}
	_, err = r.Resolve(context.Background(), "nope")
	if apperr.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("unknown token status = %d", apperr.StatusOf(err))
	}

	down := NewPGResolver(fakeQuerier{err: errors.New("conn refused")})
	_, err = down.Resolve(context.Background(), "tok-1")
	if apperr.StatusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("store down status = %d", apperr.StatusOf(err))
	}
}

func TestJWTResolver(t *testing.T) {
	r := NewJWTResolver("s3cret")
	exp := time.Now().Add(time.Hour).Unix()

	owner, err := r.Resolve(context.Background(), sign(t, "s3cret", jwt.MapClaims{"sub": "s-7", "exp": exp}, jwt.SigningMethodHS256))
	if err != nil || owner != "s-7" {
		t.Fatalf("sub: owner=%q err=%v", owner, err)
	}
	owner, err = r.Resolve(context.Background(), sign(t, "s3cret", jwt.MapClaims{"student_id": "s-8", "exp": exp}, jwt.SigningMethodHS256))
	if err != nil || owner != "s-8" {
		t.Fatalf("student_id: owner=%q err=%v", owner, err)
	}

	for name, tok := range map[string]string{
		"wrong secret": sign(t, "other", jwt.MapClaims{"sub": "s-7", "exp": exp}, jwt.SigningMethodHS256),
		"expired":      sign(t, "s3cret", jwt.MapClaims{"sub": "s-7", "exp": time.Now().Add(-time.Hour).Unix()}, jwt.SigningMethodHS256),
		"wrong alg":    sign(t, "s3cret", jwt.MapClaims{"sub": "s-7", "exp": exp}, jwt.SigningMethodHS512),
		"no subject":   sign(t, "s3cret", jwt.MapClaims{"exp": exp}, jwt.SigningMethodHS256),
		"opaque":       "tok-1",
	} {
		if _, err := r.Resolve(context.Background(), tok); !apperr.IsKind(err, apperr.KindAuth) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestVerifierChain(t *testing.T) {
	pg := NewPGResolver(fakeQuerier{tokens: map[string]string{"tok-1": "s-100"}})
	v := NewVerifier(time.Second, NewJWTResolver("k"), pg)

	if owner, err := v.Resolve(context.Background(), " tok-1 "); err != nil || owner != "s-100" {
		t.Fatalf("opaque via pg: owner=%q err=%v", owner, err)
	}
	jwtTok := sign(t, "k", jwt.MapClaims{"sub": "s-9"}, jwt.SigningMethodHS256)
	if owner, err := v.Resolve(context.Background(), jwtTok); err != nil || owner != "s-9" {
		t.Fatalf("jwt: owner=%q err=%v", owner, err)
	}
	if _, err := v.Resolve(context.Background(), ""); apperr.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("empty token: %v", err)
	}
}

func TestVerifierPrefersUpstreamError(t *testing.T) {
	v := NewVerifier(time.Second, NewJWTResolver("k"), NewPGResolver(fakeQuerier{err: errors.New("timeout")}))
	_, err := v.Resolve(context.Background(), "tok-1")
	if apperr.StatusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", apperr.StatusOf(err))
	}
}
