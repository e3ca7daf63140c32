// Package auth resolves opaque bearer tokens to owner ids. Token issuance lives elsewhere.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"cafeteria-system/internal/common/apperr"
)

var errUnknownToken = apperr.Unauthorized("invalid or missing token")

type Resolver interface {
	Resolve(ctx context.Context, token string) (ownerID string, err error)
}

type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGResolver looks tokens up in auth_tokens.
type PGResolver struct{ db Querier }

func NewPGResolver(db Querier) *PGResolver { return &PGResolver{db: db} }

func (r *PGResolver) Resolve(ctx context.Context, token string) (string, error) {
	var owner string
	err := r.db.QueryRow(ctx, `SELECT student_id FROM auth_tokens WHERE token = $1`, token).Scan(&owner)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", errUnknownToken
	case err != nil:
		return "", apperr.Upstream("credential store unavailable", err)
	}
	return owner, nil
}

// JWTResolver accepts HS256 tokens whose subject (or student_id claim) names the owner.
type JWTResolver struct{ secret []byte }

func NewJWTResolver(secret string) *JWTResolver { return &JWTResolver{secret: []byte(secret)} }

func (r *JWTResolver) Resolve(_ context.Context, token string) (string, error) {
	if strings.Count(token, ".") != 2 {
		return "", errUnknownToken
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", errUnknownToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errUnknownToken
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	if id, ok := claims["student_id"].(string); ok && id != "" {
		return id, nil
	}
	return "", errUnknownToken
}

// Verifier tries each resolver in order under one timeout. The first success wins;
// if none succeeds, an infrastructure error beats a plain "unknown token".
type Verifier struct {
	resolvers []Resolver
	timeout   time.Duration
}

func NewVerifier(timeout time.Duration, resolvers ...Resolver) *Verifier {
	return &Verifier{resolvers: resolvers, timeout: timeout}
}

func (v *Verifier) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errUnknownToken
	}
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	var upstream error
	for _, r := range v.resolvers {
		owner, err := r.Resolve(ctx, token)
		if err == nil {
			return owner, nil
		}
		if !apperr.IsKind(err, apperr.KindAuth) && upstream == nil {
			upstream = err
		}
	}
	if upstream != nil {
		return "", upstream
	}
	return "", errUnknownToken
}
