package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"knowledgebase/internal/domain"
	"knowledgebase/internal/domain/models"
)

func TestParseClaims(t *testing.T) {
	secret := []byte("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	sign := func(c models.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name    string
		token   string
		methods []string
		wantSub string
	}{
		{
			name:    "valid",
			token:   sign(models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}, Role: "authenticated"}),
			methods: []string{"HS256"},
			wantSub: "u1",
		},
		{
			name:    "expired",
			token:   sign(models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: past}, Role: "authenticated"}),
			methods: []string{"HS256"},
		},
		{
			name:    "anonymous role",
			token:   sign(models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}, Role: "anon"}),
			methods: []string{"HS256"},
		},
		{
			name:    "missing subject",
			token:   sign(models.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}, Role: "authenticated"}),
			methods: []string{"HS256"},
		},
		{
			name:    "algorithm not allowed",
			token:   sign(models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}, Role: "authenticated"}),
			methods: allowedAlgorithms,
		},
		{
			name:    "garbage",
			token:   "not.a.jwt",
			methods: []string{"HS256"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := parseClaims(tt.token, keyFunc, logger, jwt.WithValidMethods(tt.methods))
			if tt.wantSub == "" {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected unauthorized, got claims=%v err=%v", claims, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.GetUserID() != tt.wantSub {
				t.Errorf("subject = %q, want %q", claims.GetUserID(), tt.wantSub)
			}
		})
	}
}
