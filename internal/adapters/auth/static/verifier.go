package static

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"baby-care-log/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrUnauthorized = errors.New("unauthorized")
)

// Verifier implementa auth.AuthVerifier con una tabla fija token -> usuario
// (viene de la config). Pensado para despliegues chicos de una familia.
type Verifier struct {
	tokens map[string]string
}

func NewVerifier(tokens map[string]string) *Verifier {
	clean := make(map[string]string, len(tokens))
	for tok, uid := range tokens {
		tok, uid = strings.TrimSpace(tok), strings.TrimSpace(uid)
		if tok == "" || uid == "" {
			continue
		}
		clean[tok] = uid
	}
	return &Verifier{tokens: clean}
}

// Empty indica que no hay tokens configurados (el router cae a modo dev).
func (v *Verifier) Empty() bool {
	return v == nil || len(v.tokens) == 0
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}
	if v == nil {
		return auth.Claims{}, ErrUnauthorized
	}
	for known, uid := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return auth.Claims{UserID: uid}, nil
		}
	}
	return auth.Claims{}, ErrUnauthorized
}
