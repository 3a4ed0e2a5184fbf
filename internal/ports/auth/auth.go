package auth

import "context"

// Claims identifica al cuidador autenticado.
type Claims struct {
	UserID string
	Email  string
}

// AuthVerifier verifica un bearer token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
